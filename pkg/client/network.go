package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goliatone/go-tutordash/pkg/listing"
)

// Network buckets reported in contact stats.
const (
	StatAllContacts         = "allContacts"
	StatPlatformConnections = "platformConnections"
	StatManualContacts      = "manualContacts"
)

type contactsData struct {
	Contacts   []Contact          `json:"contacts"`
	Stats      map[string]int     `json:"stats"`
	Pagination listing.Pagination `json:"pagination"`
}

// Contacts fetches one page of the network.
func (c *Client) Contacts(ctx context.Context, req listing.Request) (listing.Response[Contact], error) {
	var data contactsData
	if err := c.getData(ctx, "/api/network/contacts/", req.Values(), "", &data); err != nil {
		return listing.Response[Contact]{}, err
	}
	if data.Contacts == nil {
		data.Contacts = []Contact{}
	}
	if data.Pagination.CurrentPage == 0 {
		data.Pagination.CurrentPage = max(req.Page, 1)
	}
	if data.Pagination.TotalPages == 0 {
		data.Pagination.TotalPages = 1
	}
	return listing.Response[Contact]{Items: data.Contacts, Stats: data.Stats, Pagination: data.Pagination}, nil
}

// CreateContact adds a contact. The API answers with the contact itself.
func (c *Client) CreateContact(ctx context.Context, input ContactInput) (Contact, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Contact{}, err
	}
	var contact Contact
	err = c.sendData(ctx, http.MethodPost, "/api/network/contacts/", body, "contact", &contact)
	return contact, err
}

// UpdateContact replaces a contact's details.
func (c *Client) UpdateContact(ctx context.Context, id int, input ContactInput) (Contact, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Contact{}, err
	}
	var contact Contact
	err = c.sendData(ctx, http.MethodPut, pathf("/api/network/contacts/%s/", id), body, "contact", &contact)
	return contact, err
}

// DeleteContact removes a contact.
func (c *Client) DeleteContact(ctx context.Context, id int) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: pathf("/api/network/contacts/%s/", id)})
	return err
}

// SearchUsers looks up platform users by exact username, email or phone.
func (c *Client) SearchUsers(ctx context.Context, query string) (UserSearchResult, error) {
	var result UserSearchResult
	err := c.getData(ctx, "/api/network/instructor/users/search/", url.Values{"query": {query}}, "", &result)
	if result.Results == nil {
		result.Results = []User{}
	}
	return result, err
}

// SendConnectionRequest asks a platform user to connect.
func (c *Client) SendConnectionRequest(ctx context.Context, userID int, message string) error {
	body, err := jsonPayload(map[string]any{"to_user": userID, "message": message})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{method: http.MethodPost, path: "/api/network/connections/request/", body: body})
	return err
}

// ContactsSource adapts the client to the list controller.
type ContactsSource struct {
	Client *Client
}

var _ listing.DataSource[Contact] = ContactsSource{}

func (s ContactsSource) Fetch(ctx context.Context, req listing.Request) (listing.Response[Contact], error) {
	return s.Client.Contacts(ctx, req)
}

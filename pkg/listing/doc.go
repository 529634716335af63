// Package listing implements the paginated list controller behind the
// network view and the course list.
//
// A Controller owns the live query (page, filter, search text), the last
// committed result and two loading flags. Filter and page changes fetch
// immediately; search keystrokes re-arm a single debounce timer and only the
// last one fetches. Every fetch carries a sequence number and only the
// response to the most recent fetch is committed, so a slow page 1 response
// can never overwrite a faster page 2 response. Fetch failures keep the
// previous result and surface through State.Err.
package listing

package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/model"
)

func loginFields() []model.Field {
	return []model.Field{
		{Name: "username_or_email", Label: "Username or email", Type: model.FieldTypeText, Required: true},
		{Name: "password", Label: "Password", Type: model.FieldTypePassword, Required: true},
	}
}

func openTab(t *testing.T, draft *form.SharedDraft, tab string, fields []model.Field) *form.Engine {
	t.Helper()
	engine, err := draft.Open(tab, fields)
	if err != nil {
		t.Fatalf("Open(%s): %v", tab, err)
	}
	return engine
}

func TestSharedDraft_KeepsDraftOnSameTab(t *testing.T) {
	draft := form.NewSharedDraft()

	login := openTab(t, draft, "login", loginFields())
	fill(t, login, map[string]string{"username_or_email": "ada"})

	again := openTab(t, draft, "login", loginFields())
	if got := again.Values().String("username_or_email"); got != "ada" {
		t.Fatalf("reopening the active tab must keep the draft, got %q", got)
	}
	if draft.Active() != "login" {
		t.Fatalf("expected active tab login, got %q", draft.Active())
	}
}

func TestSharedDraft_TabSwitchResets(t *testing.T) {
	draft := form.NewSharedDraft()

	login := openTab(t, draft, "login", loginFields())
	fill(t, login, map[string]string{"username_or_email": "ada", "password": "secret"})
	login.SetFieldError("password", "Invalid credentials")

	register := openTab(t, draft, "register", registerFields())
	want := model.Values{
		"username": "",
		"email":    "",
		"password": "",
		"roles":    []string{"Student"},
		"bio":      "",
	}
	if diff := cmp.Diff(want, register.Values()); diff != "" {
		t.Fatalf("switching tabs must reset to defaults (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, draft.Get()); diff != "" {
		t.Fatalf("owner draft mismatch (-want +got):\n%s", diff)
	}

	back := openTab(t, draft, "login", loginFields())
	if got := back.Values().String("username_or_email"); got != "" {
		t.Fatalf("switching back must not restore the old login draft, got %q", got)
	}
	if snap := back.Snapshot(); len(snap.Errors) != 0 {
		t.Fatalf("fresh tab must start without errors, got %v", snap.Errors)
	}
}

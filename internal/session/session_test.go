package session

import (
	"context"
	"errors"
	"testing"
)

func newTestService() *Service {
	return NewService("test-secret", "admingate-test", nil)
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	svc := newTestService()

	token, err := svc.Issue("user-1", []string{"admin", "billing_viewer"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sess, err := svc.Parse(context.Background(), token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Fatalf("UserID = %q", sess.UserID)
	}
	if !sess.HasRole("admin") || !sess.HasRole("ADMIN") {
		t.Fatalf("HasRole(admin) should be case-insensitive: %+v", sess.Roles)
	}
	if sess.SuperAdmin() {
		t.Fatalf("unexpected super admin")
	}
}

func TestParseRejectsEmptyAndGarbage(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Parse(context.Background(), ""); !errors.Is(err, ErrNoToken) {
		t.Fatalf("empty token: err = %v", err)
	}
	if _, err := svc.Parse(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: err = %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := NewService("other-secret", "elsewhere", nil).Issue("user-1", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := newTestService().Parse(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature: err = %v", err)
	}
}

func TestSuperAdminDetection(t *testing.T) {
	sess := &Session{UserID: "u", Roles: []string{"viewer", "Super_Admin"}}
	if !sess.SuperAdmin() {
		t.Fatalf("super_admin role not detected")
	}

	var nilSess *Session
	if nilSess.SuperAdmin() {
		t.Fatalf("nil session cannot be super admin")
	}
}

func TestExtractBearer(t *testing.T) {
	if got := ExtractBearer("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Fatalf("got %q", got)
	}
	if got := ExtractBearer("abc.def.ghi"); got != "abc.def.ghi" {
		t.Fatalf("bare token should pass through, got %q", got)
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), &Session{UserID: "u1"})
	sess, ok := FromContext(ctx)
	if !ok || sess.UserID != "u1" {
		t.Fatalf("FromContext = %+v, %v", sess, ok)
	}

	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected session on empty context")
	}
}

package auth

import (
	"testing"
	"videoserver/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := models.User{ID: 42, Role: models.RoleEditor}
	token, err := IssueToken(&user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != models.RoleEditor {
		t.Errorf("Role = %v, want editor", claims.Role)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := VerifyToken(token); err == nil {
			t.Errorf("VerifyToken(%q) should fail", token)
		}
	}
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	user := models.User{ID: 42, Role: models.RoleViewer}
	token, err := IssueToken(&user)
	if err != nil {
		t.Fatal(err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := VerifyToken(tampered); err == nil {
		t.Error("tampered token should fail verification")
	}
}

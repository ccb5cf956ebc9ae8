package auth

import (
	"testing"

	"github.com/docvault/docvault/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name    string
		actor   Actor
		ownerID *string
		want    bool
	}{
		{"owner", Actor{ID: "u1", Role: models.RoleViewer}, strPtr("u1"), true},
		{"non-owner viewer", Actor{ID: "u2", Role: models.RoleViewer}, strPtr("u1"), false},
		{"non-owner editor", Actor{ID: "u2", Role: models.RoleEditor}, strPtr("u1"), false},
		{"admin non-owner", Actor{ID: "u2", Role: models.RoleAdmin}, strPtr("u1"), true},
		{"system document non-admin", Actor{ID: "u1", Role: models.RoleEditor}, nil, false},
		{"system document admin", Actor{ID: "u1", Role: models.RoleAdmin}, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanAccess(tc.actor, tc.ownerID); got != tc.want {
				t.Fatalf("CanAccess(%+v, %v) = %v, want %v", tc.actor, tc.ownerID, got, tc.want)
			}
		})
	}
}

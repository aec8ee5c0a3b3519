package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret")

	tests := []struct {
		name      string
		actor     model.Actor
		ttl       time.Duration
		wantErr   bool
		wantSuper bool
	}{
		{name: "garage user", actor: model.Actor{TenantID: "garage-1", UserID: "u1", Role: model.RoleCashier}, ttl: time.Hour},
		{name: "super admin without tenant", actor: model.Actor{UserID: "root", Role: model.RoleSuperAdmin}, ttl: time.Hour, wantSuper: true},
		{name: "user without tenant", actor: model.Actor{UserID: "u2", Role: model.RoleOwner}, ttl: time.Hour, wantErr: true},
		{name: "expired", actor: model.Actor{TenantID: "garage-1", UserID: "u3", Role: model.RoleOwner}, ttl: -time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := tokens.Issue(tt.actor, tt.ttl)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			got, err := tokens.Parse(tok)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("err = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got.TenantID != tt.actor.TenantID || got.UserID != tt.actor.UserID || got.Role != tt.actor.Role {
				t.Errorf("actor = %+v, want %+v", got, tt.actor)
			}
			if got.SuperAdmin != tt.wantSuper {
				t.Errorf("super admin = %v, want %v", got.SuperAdmin, tt.wantSuper)
			}
		})
	}
}

func TestParseRejectsOtherSecret(t *testing.T) {
	tok, err := NewTokens("one").Issue(model.Actor{TenantID: "garage-1", UserID: "u1", Role: model.RoleOwner}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokens("two").Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBootstrapAdminCreatesAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	path := filepath.Join(t.TempDir(), "initial_admin_password.secret")
	cfg := Config{BootstrapAdminEnabled: true, InitialAdminPasswordPath: path}

	if err := BootstrapAdmin(context.Background(), repo, cfg); err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}

	u, err := repo.FindByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if len(u.Roles) != 1 || u.Roles[0] != string(RoleAdmin) {
		t.Fatalf("roles = %v, want [admin]", u.Roles)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("password file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("password file mode = %o, want 600", perm)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read password file: %v", err)
	}
	password := strings.TrimSpace(string(raw))
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		t.Fatal("written password does not match stored hash")
	}
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	repo.seed("root", "root@example.com", hashPassword(t, "Passw0rd!"), string(RoleAdmin))
	cfg := Config{BootstrapAdminEnabled: true, InitialAdminPasswordPath: filepath.Join(t.TempDir(), "pw")}

	if err := BootstrapAdmin(context.Background(), repo, cfg); err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "admin"); err == nil {
		t.Fatal("second admin created despite an existing one")
	}
}

func TestBootstrapAdminDisabled(t *testing.T) {
	repo := newFakeUserRepo()
	cfg := Config{BootstrapAdminEnabled: false}

	if err := BootstrapAdmin(context.Background(), repo, cfg); err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "admin"); err == nil {
		t.Fatal("admin created while bootstrap disabled")
	}
}

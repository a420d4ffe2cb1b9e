package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// useDirect points the CLI at an in-process backend database shared by
// every device profile the test opens.
func useDirect(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "backend.db"))
	t.Setenv("LOG_FILE", "")
	direct = true
	configPath, backendURL = "", ""
	t.Cleanup(func() {
		direct = false
		profileDir = ""
		authEmail, authPassword = "", ""
		cartVariant, cartQty, cartSlug = 0, 1, ""
		catalogCategory = ""
	})
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	if err := fn(cmd, args); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	return out.String()
}

func TestAnonymousCartStaysOnDevice(t *testing.T) {
	useDirect(t)
	profileDir = t.TempDir()

	cartQty = 2
	if got := strings.TrimSpace(run(t, runCartAdd, "1")); got != "2" {
		t.Fatalf("expected count 2, got %q", got)
	}
	cartQty = 1
	run(t, runCartAdd, "1")
	if got := strings.TrimSpace(run(t, runCartCount)); got != "3" {
		t.Fatalf("expected count 3, got %q", got)
	}
	if out := run(t, runCartSync); !strings.Contains(out, "skipped") {
		t.Fatalf("anonymous sync should be skipped, got %q", out)
	}
	run(t, runCartClear)
	if out := run(t, runCartShow); !strings.Contains(out, "empty") {
		t.Fatalf("expected empty cart, got %q", out)
	}
}

func TestClientCartFollowsAcrossDevices(t *testing.T) {
	useDirect(t)
	authEmail, authPassword = "ana@fandomia.test", "Passw0rd!"

	profileDir = t.TempDir()
	if out := run(t, runLogin); !strings.Contains(out, "Signed in as ana@fandomia.test") {
		t.Fatalf("unexpected login output %q", out)
	}
	cartSlug = "Figura Goku Súper Saiyajin"
	run(t, runCartAdd)
	cartSlug = ""

	// A second device signs in with an empty cart and picks up the first one's.
	profileDir = t.TempDir()
	out := run(t, runLogin)
	if !strings.Contains(out, "Cart: 1 item(s)") || !strings.Contains(out, "hydrated") {
		t.Fatalf("second device should restore the cart, got %q", out)
	}
	show := run(t, runCartShow)
	if !strings.Contains(show, "PRODUCT") {
		t.Fatalf("unexpected cart listing %q", show)
	}

	if out := run(t, runLogout); !strings.Contains(out, "Signed out") {
		t.Fatalf("unexpected logout output %q", out)
	}
	if got := strings.TrimSpace(run(t, runCartCount)); got != "1" {
		t.Fatalf("logout must keep the device cart, got %q", got)
	}
}

func TestStaffCartIsNotMirrored(t *testing.T) {
	useDirect(t)
	authEmail, authPassword = "sofia@fandomia.test", "Passw0rd!"
	profileDir = t.TempDir()

	run(t, runLogin)
	run(t, runCartAdd, "3")
	if out := run(t, runCartSync); !strings.Contains(out, "skipped") {
		t.Fatalf("staff sync should be skipped, got %q", out)
	}
}

func TestProductCommand(t *testing.T) {
	useDirect(t)
	profileDir = t.TempDir()

	out := run(t, runProduct, "Camiseta Naruto Akatsuki")
	if !strings.Contains(out, "Camiseta Naruto Akatsuki") || !strings.Contains(out, "S / Negro") {
		t.Fatalf("unexpected product output %q", out)
	}
	if strings.Contains(out, "L / Negro") {
		t.Fatalf("out of stock variant listed: %q", out)
	}
	if !strings.Contains(out, "image: img/camiseta-naruto-akatsuki/frente.jpg") {
		t.Fatalf("images not listed: %q", out)
	}
}

func TestCatalogCommands(t *testing.T) {
	useDirect(t)
	profileDir = t.TempDir()

	out := run(t, runCatalog, "pikachu")
	if !strings.Contains(out, "sudadera-pokemon-pikachu") || strings.Contains(out, "camiseta") {
		t.Fatalf("unexpected catalog output %q", out)
	}
	catalogCategory = "tazas"
	out = run(t, runCatalog)
	if !strings.Contains(out, "taza-studio-ghibli-totoro") || strings.Contains(out, "sudadera") {
		t.Fatalf("unexpected category output %q", out)
	}
	catalogCategory = ""
	if out := run(t, runCatalog, "nada", "parecido"); !strings.Contains(out, "No products found") {
		t.Fatalf("expected empty result, got %q", out)
	}

	out = run(t, runCategories)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "figuras") {
		t.Fatalf("unexpected categories output %q", out)
	}
}

func TestSlugAddDoesNotKeepResolvedVariant(t *testing.T) {
	useDirect(t)
	profileDir = t.TempDir()

	cartSlug = "Figura Goku Súper Saiyajin"
	run(t, runCartAdd)
	if cartVariant != 0 {
		t.Fatalf("--variant flag changed to %d by slug lookup", cartVariant)
	}

	cartSlug = ""
	run(t, runCartAdd, "1")
	show := run(t, runCartShow)
	lines := strings.Split(strings.TrimSpace(show), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two lines, got %q", show)
	}
	if got := strings.Join(strings.Fields(lines[2]), " "); got != "1 - 1" {
		t.Fatalf("second add should have no variant, got %q", got)
	}
}

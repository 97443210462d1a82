package reservation

import (
	"errors"
	"testing"

	"github.com/iliyamo/space-reservation/internal/model"
)

func fakeHash(plain string) (string, error) { return "h:" + plain, nil }
func fakeVerify(hash, plain string) bool    { return hash == "h:"+plain }

func guest() GuestStrategy { return GuestStrategy{Hash: fakeHash, Verify: fakeVerify} }

func TestManagerStrategy(t *testing.T) {
	space := testSpace()
	owner := ManagerStrategy{MemberID: space.MapOwnerID}
	stranger := ManagerStrategy{MemberID: space.MapOwnerID + 1}
	existing := &model.Reservation{ID: 1, PasswordHash: "h:1234"}

	if err := owner.AuthorizeMutation(space, existing, ""); err != nil {
		t.Fatalf("owner without password rejected: %v", err)
	}
	for _, pw := range []string{"", "1234", "9999"} {
		if err := stranger.AuthorizeMutation(space, existing, pw); !errors.Is(err, ErrNoAuthority) {
			t.Errorf("stranger with password %q: %v, want no_authority", pw, err)
		}
	}
	if err := stranger.AuthorizeBrowse(space); !errors.Is(err, ErrNoAuthority) {
		t.Errorf("stranger browse: %v", err)
	}
	if sealed, _ := owner.SealPassword("1234"); sealed != "" {
		t.Errorf("manager reservations must not store a password, got %q", sealed)
	}
	n, ok := owner.BuildNotification(space, model.Reservation{ID: 5, OwnerName: "kim"})
	if !ok || n.ReservationID != 5 || n.SpaceName != space.Name {
		t.Errorf("BuildNotification() = %+v, %v", n, ok)
	}
}

func TestGuestStrategy(t *testing.T) {
	space := testSpace()
	g := guest()
	existing := &model.Reservation{ID: 1, PasswordHash: "h:1234"}

	if err := g.AuthorizeMutation(space, nil, "1234"); err != nil {
		t.Fatalf("guest create rejected: %v", err)
	}
	if err := g.AuthorizeMutation(space, nil, ""); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("guest create without password: %v", err)
	}
	if err := g.AuthorizeMutation(space, existing, "1234"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := g.AuthorizeMutation(space, existing, "0000"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password: %v", err)
	}
	managerOwned := &model.Reservation{ID: 2}
	if err := g.AuthorizeMutation(space, managerOwned, ""); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("guest touching a manager reservation: %v", err)
	}
	if err := g.AuthorizeBrowse(space); err != nil {
		t.Errorf("guest browse: %v", err)
	}
	if err := g.AuthorizeRead(space, *existing, "0000"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("guest read with wrong password: %v", err)
	}
	if _, ok := g.BuildNotification(space, *existing); ok {
		t.Error("guests must not trigger notifications")
	}
	if sealed, _ := g.SealPassword("1234"); sealed != "h:1234" {
		t.Errorf("SealPassword() = %q", sealed)
	}
}

package back // nolint:testpackage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestClaim(t *testing.T) {
	back, _, ids := createFixturedTestBack(t)
	ctx := context.Background()

	club, err := back.Claim(ctx, ids.alice.ID, ids.strong.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !club.OwnerID.Valid || club.OwnerID.Int64 != ids.alice.ID {
		t.Fatalf("expected Alice to manage the club, got %+v", club.OwnerID)
	}

	cases := []struct {
		name       string
		user, club int64
		expected   error
	}{
		{"owned", ids.bob.ID, ids.strong.ID, ErrAlreadyOwned},
		{"owned by self", ids.alice.ID, ids.strong.ID, ErrAlreadyOwned},
		{"already managing", ids.alice.ID, ids.weak.ID, ErrAlreadyManaging},
		{"no club", ids.bob.ID, 404, ErrClubNotFound},
		{"no user", 404, ids.weak.ID, ErrUserNotFound},
	}

	for _, v := range cases {
		if _, err := back.Claim(ctx, v.user, v.club); !errors.Is(err, v.expected) {
			t.Errorf("%s: expected %v, got %v", v.name, v.expected, err)
		}
	}

	// Failed claims did not write anything.
	weak := getTestClub(t, back, ids.weak.ID)
	if weak.IsOwned() {
		t.Errorf("expected the weak club to stay unmanaged, got %+v", weak.OwnerID)
	}
	strong := getTestClub(t, back, ids.strong.ID)
	if strong.OwnerID.Int64 != ids.alice.ID {
		t.Errorf("expected Alice to still manage the strong club, got %+v", strong.OwnerID)
	}
}

func TestClaimByExternalID(t *testing.T) {
	back, _, ids := createFixturedTestBack(t)
	ctx := context.Background()

	if _, err := back.ClaimByExternalID(ctx, "unknown", ids.weak.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	club, err := back.ClaimByExternalID(ctx, ids.carol.ExternalID, ids.weak.ID)
	if err != nil {
		t.Fatal(err)
	}
	if club.OwnerID.Int64 != ids.carol.ID {
		t.Fatalf("expected Carol to manage the club, got %+v", club.OwnerID)
	}

	managed, err := back.GetManagedClub(ctx, ids.carol.ExternalID)
	if err != nil {
		t.Fatal(err)
	}
	if managed.ID != ids.weak.ID {
		t.Errorf("expected club %d, got %d", ids.weak.ID, managed.ID)
	}

	if _, err := back.GetManagedClub(ctx, ids.bob.ExternalID); !errors.Is(err, ErrNotManaging) {
		t.Errorf("expected ErrNotManaging, got %v", err)
	}
}

func TestClaimConcurrentIsExclusive(t *testing.T) {
	back, _, ids := createFixturedTestBack(t)
	ctx := context.Background()
	const claimers = 16

	users := make([]User, claimers)
	for i := range users {
		var err error
		users[i], err = back.EnsureRegistered(ctx, fmt.Sprintf("claimer-%d", i), "")
		if err != nil {
			t.Fatal(err)
		}
	}

	var (
		mu        sync.Mutex
		winners   []int64
		conflicts int
	)

	var g errgroup.Group
	for _, user := range users {
		user := user
		g.Go(func() error {
			_, err := back.Claim(ctx, user.ID, ids.empty.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, user.ID)
			case errors.Is(err, ErrAlreadyOwned):
				conflicts++
			default:
				return err
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if len(winners) != 1 || conflicts != claimers-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %v and %d", claimers-1, winners, conflicts)
	}

	club := getTestClub(t, back, ids.empty.ID)
	if club.OwnerID.Int64 != winners[0] {
		t.Fatalf("expected user %d to own the club, got %+v", winners[0], club.OwnerID)
	}
}

func TestClaimClubFiveTwoUsers(t *testing.T) {
	back, _, ids := createFixturedTestBack(t)
	ctx := context.Background()
	const clubID = 5

	results := make([]error, 2)
	var g errgroup.Group
	for k, user := range []User{ids.alice, ids.bob} {
		k, user := k, user
		g.Go(func() error {
			_, results[k] = back.Claim(ctx, user.ID, clubID)
			return nil
		})
	}
	_ = g.Wait()

	var winner User
	switch {
	case results[0] == nil && errors.Is(results[1], ErrAlreadyOwned):
		winner = ids.alice
	case results[1] == nil && errors.Is(results[0], ErrAlreadyOwned):
		winner = ids.bob
	default:
		t.Fatalf("expected exactly one success, got %v", results)
	}

	if owner := getTestClub(t, back, clubID).OwnerID; owner.Int64 != winner.ID {
		t.Fatalf("expected %s to own club 5, got %+v", winner.Name, owner)
	}

	if _, err := back.Claim(ctx, ids.carol.ID, clubID); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("expected ErrAlreadyOwned for a late claim, got %v", err)
	}
}

func TestGetClubs(t *testing.T) {
	back, _, ids := createFixturedTestBack(t)
	ctx := context.Background()

	if _, err := back.Claim(ctx, ids.bob.ID, ids.weak.ID); err != nil {
		t.Fatal(err)
	}

	clubs, err := back.GetClubs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(clubs) != 5 {
		t.Fatalf("expected 5 clubs, got %d", len(clubs))
	}

	for _, v := range clubs {
		if v.ID == ids.weak.ID {
			if v.OwnerName.String != "Bob" {
				t.Errorf("expected Bob as manager, got %+v", v.OwnerName)
			}
			continue
		}

		if v.OwnerName.Valid {
			t.Errorf("club %d: unexpected manager %s", v.ID, v.OwnerName.String)
		}
	}

	club, players, err := back.GetClub(ctx, ids.strong.ID)
	if err != nil {
		t.Fatal(err)
	}
	if club.Name != "Strong FC" || len(players) != 4 || players[0].Rating != 75 {
		t.Errorf("unexpected club %+v with roster %+v", club, players)
	}

	if _, _, err := back.GetClub(ctx, 404); !errors.Is(err, ErrClubNotFound) {
		t.Errorf("expected ErrClubNotFound, got %v", err)
	}
}

// internal/engine/allocator_test.go
package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablemate-app/tablemate/internal/models"
)

func testWeek() time.Time {
	return time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC)
}

func newTestAllocator(seed int64) *Allocator {
	return &Allocator{Min: 3, Max: 5, Rand: rand.New(rand.NewSource(seed))}
}

func sameGenderGroup(composition string, members ...uuid.UUID) *GroupState {
	return &GroupState{
		Group: models.Group{
			ID:                uuid.New(),
			GroupType:         models.GroupTypeSameGender,
			GenderComposition: composition,
			Status:            models.GroupStatusActive,
			MatchWeek:         testWeek(),
		},
		Members: members,
	}
}

func TestAllocatePrefersSameGenderGroupWithRoom(t *testing.T) {
	existing := []*GroupState{
		sameGenderGroup(models.CompositionAllFemale, uuid.New(), uuid.New()),
	}
	u := activeUser(models.GenderFemale)

	groups := newTestAllocator(1).Allocate(testWeek(), []models.User{u}, existing)

	require.Len(t, groups, 1, "no new group should be opened")
	assert.Equal(t, []uuid.UUID{u.ID}, groups[0].Added)
	assert.Len(t, groups[0].Members, 3)
}

func TestAllocateFallsBackToMixedGroup(t *testing.T) {
	full := sameGenderGroup(models.CompositionAllFemale,
		uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New())
	mixed := &GroupState{
		Group: models.Group{
			ID:                uuid.New(),
			GroupType:         models.GroupTypeMixed,
			GenderComposition: models.Composition2F3M,
			Status:            models.GroupStatusActive,
			MatchWeek:         testWeek(),
		},
		Members: []uuid.UUID{uuid.New(), uuid.New()},
	}
	u := activeUser(models.GenderFemale)

	groups := newTestAllocator(2).Allocate(testWeek(), []models.User{u}, []*GroupState{full, mixed})

	require.Len(t, groups, 2)
	assert.Empty(t, full.Added)
	assert.Equal(t, []uuid.UUID{u.ID}, mixed.Added)
}

func TestAllocateWrongGenderNeverJoinsSameGenderGroup(t *testing.T) {
	females := sameGenderGroup(models.CompositionAllFemale, uuid.New(), uuid.New())
	u := activeUser(models.GenderMale)

	groups := newTestAllocator(3).Allocate(testWeek(), []models.User{u}, []*GroupState{females})

	require.Len(t, groups, 2, "a new group should be opened")
	assert.Empty(t, females.Added)
	opened := groups[1]
	assert.True(t, opened.New)
	assert.Equal(t, []uuid.UUID{u.ID}, opened.Members)
}

func TestAllocateUnspecifiedGenderOpensMixedGroup(t *testing.T) {
	u := activeUser("")
	groups := newTestAllocator(4).Allocate(testWeek(), []models.User{u}, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupTypeMixed, groups[0].Group.GroupType)
}

func TestAllocateNewGroupTypeLoadBalances(t *testing.T) {
	// Two same-gender groups already open and full: the next opened group
	// must be mixed.
	existing := []*GroupState{
		sameGenderGroup(models.CompositionAllMale,
			uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()),
		sameGenderGroup(models.CompositionAllFemale,
			uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()),
	}
	u := activeUser(models.GenderMale)

	groups := newTestAllocator(5).Allocate(testWeek(), []models.User{u}, existing)
	require.Len(t, groups, 3)
	assert.Equal(t, models.GroupTypeMixed, groups[2].Group.GroupType)
}

func TestAllocateTieFavorsSameGender(t *testing.T) {
	u := activeUser(models.GenderFemale)
	groups := newTestAllocator(6).Allocate(testWeek(), []models.User{u}, nil)

	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupTypeSameGender, groups[0].Group.GroupType)
	assert.Equal(t, models.CompositionAllFemale, groups[0].Group.GenderComposition)
}

func TestAllocateMixedCompositionComesFromFixedPair(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		u := activeUser("")
		groups := newTestAllocator(seed).Allocate(testWeek(), []models.User{u}, nil)
		require.Len(t, groups, 1)
		comp := groups[0].Group.GenderComposition
		assert.Contains(t, []string{models.Composition2F3M, models.Composition3F2M}, comp)
	}
}

func TestAllocateRandomizedOrderStillCoversEveryone(t *testing.T) {
	var pool []models.User
	for i := 0; i < 12; i++ {
		g := models.GenderMale
		if i%2 == 0 {
			g = models.GenderFemale
		}
		pool = append(pool, models.User{ID: uuid.New(), Gender: g, Status: models.UserStatusActive})
	}

	for seed := int64(0); seed < 20; seed++ {
		groups := newTestAllocator(seed).Allocate(testWeek(), pool, nil)
		placed := make(map[uuid.UUID]int)
		for _, g := range groups {
			assert.LessOrEqual(t, len(g.Members), 5, "seed %d", seed)
			for _, id := range g.Members {
				placed[id]++
			}
		}
		require.Len(t, placed, 12, "seed %d", seed)
		for id, count := range placed {
			require.Equal(t, 1, count, "seed %d user %v placed twice", seed, id)
		}
	}
}

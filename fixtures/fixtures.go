// Package fixtures holds the sample photo-sharing and planning data set and
// the multi-collection lookups built on top of the store.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/asaidimu/go-docstore/core"
	"github.com/asaidimu/go-docstore/core/persistence"
	"github.com/asaidimu/go-docstore/core/query"
)

// Collection names used by the sample data.
const (
	Users        = "users"
	Groups       = "groups"
	GroupMembers = "group_members"
	Photos       = "photos"
	Events       = "events"
	Todos        = "todos"
)

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// Data returns the sample records keyed by collection, in insertion order.
func Data() map[string][]core.Record {
	return map[string][]core.Record{
		Users: {
			{ID: "u1", Data: core.Document{"name": "Amara Okafor", "email": "amara@example.com"}},
			{ID: "u2", Data: core.Document{"name": "Jonas Berg", "email": "jonas@example.com"}},
			{ID: "u3", Data: core.Document{"name": "Mei Tanaka", "email": "mei@example.com"}},
		},
		Groups: {
			{ID: "g1", Data: core.Document{"name": "Weekend Hikers", "ownerId": "u1", "createdAt": epoch.UnixMilli()}},
			{ID: "g2", Data: core.Document{"name": "Book Club", "ownerId": "u2", "createdAt": epoch.Add(24 * time.Hour).UnixMilli()}},
		},
		GroupMembers: {
			{ID: "m1", Data: core.Document{"groupId": "g1", "userId": "u1"}},
			{ID: "m2", Data: core.Document{"groupId": "g1", "userId": "u2"}},
			{ID: "m3", Data: core.Document{"groupId": "g2", "userId": "u2"}},
			{ID: "m4", Data: core.Document{"groupId": "g2", "userId": "u3"}},
		},
		Photos: {
			{ID: "p1", Data: core.Document{
				"groupId": "g1", "userId": "u1", "caption": "Summit at dawn",
				"likes": []any{"u2"}, "likeCount": 1,
				"comments":  []any{map[string]any{"userId": "u2", "text": "Worth the climb"}},
				"createdAt": epoch.Add(2 * time.Hour).UnixMilli(),
			}},
			{ID: "p2", Data: core.Document{
				"groupId": "g1", "userId": "u2",
				"likes": []any{}, "likeCount": 0,
				"comments":  []any{},
				"createdAt": epoch.Add(3 * time.Hour).UnixMilli(),
			}},
			{ID: "p3", Data: core.Document{
				"groupId": "g2", "userId": "u3", "caption": "This month's pick",
				"likes": []any{"u2", "u3"}, "likeCount": 2,
				"comments":  []any{},
				"createdAt": epoch.Add(26 * time.Hour).UnixMilli(),
			}},
		},
		Events: {
			{ID: "e1", Data: core.Document{"groupId": "g1", "title": "Ridge trail", "date": "2024-06-15", "location": "North trailhead"}},
			{ID: "e2", Data: core.Document{"groupId": "g2", "title": "Monthly meetup", "date": "2024-06-20", "location": "Corner cafe"}},
		},
		Todos: {
			{ID: "t1", Data: core.Document{"eventId": "e1", "title": "Pack headlamps", "done": false, "priority": 2}},
			{ID: "t2", Data: core.Document{"eventId": "e1", "title": "Check weather", "done": true, "priority": 1}},
			{ID: "t3", Data: core.Document{"eventId": "e2", "title": "Reserve table", "done": false, "priority": 1}},
		},
	}
}

// order fixes the seeding sequence so collections are created in a stable
// order.
var order = []string{Users, Groups, GroupMembers, Photos, Events, Todos}

// Seed writes the sample data. Existing records with the same ids are
// replaced, so seeding twice leaves one copy.
func Seed(ctx context.Context, store *persistence.Store) error {
	data := Data()
	for _, name := range order {
		coll := store.Collection(name)
		for _, r := range data[name] {
			if err := coll.Doc(r.ID).Set(ctx, r.Data); err != nil {
				return fmt.Errorf("failed to seed %s/%s: %w", name, r.ID, err)
			}
		}
	}
	return nil
}

// GroupsForUser returns the groups userID belongs to, in membership order.
// It looks up memberships and then fetches each group; groups that no longer
// exist are skipped.
func GroupsForUser(ctx context.Context, store *persistence.Store, userID string) ([]core.Record, error) {
	q, err := store.Collection(GroupMembers).Where("userId", query.OperatorEqual, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := store.Run(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships of %s: %w", userID, err)
	}

	groups := make([]core.Record, 0, memberships.Count())
	for _, m := range memberships.Records {
		groupID, _ := m.Data["groupId"].(string)
		snap, err := store.Doc(Groups, groupID).Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
		}
		if rec, ok := snap.Record(); ok {
			groups = append(groups, rec)
		}
	}
	return groups, nil
}

// MembersOfGroup returns the users in groupID, in membership order.
func MembersOfGroup(ctx context.Context, store *persistence.Store, groupID string) ([]core.Record, error) {
	q, err := store.Collection(GroupMembers).Where("groupId", query.OperatorEqual, groupID)
	if err != nil {
		return nil, err
	}
	memberships, err := store.Run(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of %s: %w", groupID, err)
	}

	users := make([]core.Record, 0, memberships.Count())
	for _, m := range memberships.Records {
		userID, _ := m.Data["userId"].(string)
		snap, err := store.Doc(Users, userID).Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
		}
		if rec, ok := snap.Record(); ok {
			users = append(users, rec)
		}
	}
	return users, nil
}

// DeleteGroup removes a group with its memberships, photos and events. The
// store never cascades, so the cleanup is spelled out here.
func DeleteGroup(ctx context.Context, store *persistence.Store, groupID string) error {
	for _, name := range []string{GroupMembers, Photos, Events} {
		q, err := store.Collection(name).Where("groupId", query.OperatorEqual, groupID)
		if err != nil {
			return err
		}
		snap, err := store.Run(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to list %s of group %s: %w", name, groupID, err)
		}
		for _, id := range snap.IDs() {
			if err := store.Doc(name, id).Delete(ctx); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", name, id, err)
			}
		}
	}
	return store.Doc(Groups, groupID).Delete(ctx)
}

// LikePhoto records userID's like on a photo. Liking twice is a no-op.
func LikePhoto(ctx context.Context, store *persistence.Store, photoID, userID string) error {
	snap, err := store.Doc(Photos, photoID).Get(ctx)
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return &core.NotFoundError{Collection: Photos, ID: photoID}
	}

	raw, _ := snap.Get("likes")
	existing, _ := raw.([]any)
	for _, u := range existing {
		if u == userID {
			return nil
		}
	}

	likes := append(existing, userID)
	_, err = store.Doc(Photos, photoID).Update(ctx, core.Document{
		"likes":     likes,
		"likeCount": len(likes),
	})
	return err
}

// AddComment appends a comment to a photo.
func AddComment(ctx context.Context, store *persistence.Store, photoID, userID, text string) error {
	snap, err := store.Doc(Photos, photoID).Get(ctx)
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return &core.NotFoundError{Collection: Photos, ID: photoID}
	}

	raw, _ := snap.Get("comments")
	comments, _ := raw.([]any)
	comments = append(comments, map[string]any{"userId": userID, "text": text})
	_, err = store.Doc(Photos, photoID).Update(ctx, core.Document{"comments": comments})
	return err
}

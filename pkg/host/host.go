// Package host declares the collaborator interfaces the wizard core calls
// into: entity creation, group membership, messaging, profile writes,
// permission queries, and the audit history log. The content platform owns
// the implementations; this package only fixes the contracts.
package host

import "context"

// EntityRef identifies an entity created by the host.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type TopicSpec struct {
	Title      string
	Body       string
	CategoryID string
	AuthorID   string
	Tags       []string
}

type TopicService interface {
	Create(ctx context.Context, spec TopicSpec) (EntityRef, error)
	SetCustomField(ctx context.Context, topicID, name string, value any) error
	SetPostCustomField(ctx context.Context, topicID, name string, value any) error
	Watch(ctx context.Context, topicID, userID string, level int) error
}

type CategorySpec struct {
	Name      string
	Slug      string
	Color     string
	TextColor string
	ParentID  string
}

type CategoryService interface {
	Create(ctx context.Context, spec CategorySpec) (EntityRef, error)
	SetCustomField(ctx context.Context, categoryID, name string, value any) error
	Watch(ctx context.Context, categoryID, userID string, level int) error
}

type GroupSpec struct {
	Name        string
	FullName    string
	Description string
}

type GroupService interface {
	Create(ctx context.Context, spec GroupSpec) (EntityRef, error)
	SetCustomField(ctx context.Context, groupID, name string, value any) error

	// AddMember resolves the group by id or name and adds the user. Adding
	// an existing member is a no-op, not an error.
	AddMember(ctx context.Context, group, userID string) error

	// Exists reports whether a group resolvable by id or name exists. Used
	// to classify message targets.
	Exists(ctx context.Context, group string) (bool, error)
}

// MessageSpec describes one private conversation. Recipients arrive
// pre-classified: UserTargets hold usernames, GroupTargets names of
// groups the host resolved via GroupService.Exists.
type MessageSpec struct {
	FromUserID   string
	Title        string
	Body         string
	UserTargets  []string
	GroupTargets []string
}

type MessageService interface {
	Send(ctx context.Context, spec MessageSpec) (EntityRef, error)
}

type ProfileService interface {
	// SetField writes a profile field; value may be structured, e.g. an
	// upload descriptor map.
	SetField(ctx context.Context, userID, name string, value any) error
}

// Permissions exposes the read-only gating queries the builder needs.
type Permissions interface {
	IsGroupMember(ctx context.Context, userID, group string) (bool, error)
	SubscriptionEnabled(ctx context.Context) bool
}

// HistoryEntry is one audit record. Context carries the template id,
// Subject the step id the entry is about.
type HistoryEntry struct {
	ActorID string
	Context string
	Subject string
	Action  string
}

const HistoryActionStepSkipped = "wizard_step_skipped"

type HistoryService interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// Host bundles every collaborator the wizard core consumes.
type Host struct {
	Topics      TopicService
	Categories  CategoryService
	Groups      GroupService
	Messages    MessageService
	Profiles    ProfileService
	Permissions Permissions
	History     HistoryService
}

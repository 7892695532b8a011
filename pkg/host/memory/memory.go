// Package memory is a stateful in-memory implementation of every host
// interface. The wizard tests and the template preview command run against
// it and inspect its recorded state afterwards.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/guidekit/guidekit/pkg/host"
)

// Topic is one topic recorded by the memory host, including the custom
// fields and watch registrations applied to it.
type Topic struct {
	Ref              host.EntityRef
	Spec             host.TopicSpec
	CustomFields     map[string]any
	PostCustomFields map[string]any
	Watchers         map[string]int
}

type Category struct {
	Ref          host.EntityRef
	Spec         host.CategorySpec
	CustomFields map[string]any
	Watchers     map[string]int
}

type Group struct {
	Ref          host.EntityRef
	Spec         host.GroupSpec
	CustomFields map[string]any
	Members      []string
}

// Host records every side effect it is asked to perform.
// RejectBlankTitles mirrors a platform that refuses blank topic and
// message titles, which is how action failures are provoked.
type Host struct {
	mu sync.Mutex

	Topics     []*Topic
	Categories []*Category
	Groups     []*Group
	Messages   []host.MessageSpec
	Profiles   map[string]map[string]any
	Entries    []host.HistoryEntry

	Subscription      bool
	Memberships       map[string][]string
	RejectBlankTitles bool

	nextID int
}

func NewHost() *Host {
	return &Host{
		Profiles:     make(map[string]map[string]any),
		Memberships:  make(map[string][]string),
		Subscription: true,
	}
}

// Bundle wires the memory host into a host.Host value.
func (h *Host) Bundle() *host.Host {
	return &host.Host{
		Topics:      topicService{h},
		Categories:  categoryService{h},
		Groups:      groupService{h},
		Messages:    messageService{h},
		Profiles:    profileService{h},
		Permissions: permissionService{h},
		History:     historyService{h},
	}
}

// AddMembership marks userID as a member of the named group for
// permission checks.
func (h *Host) AddMembership(userID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Memberships[userID] = append(h.Memberships[userID], group)
}

func (h *Host) newRef(name string) host.EntityRef {
	h.nextID++

	return host.EntityRef{
		ID:   fmt.Sprintf("%d", h.nextID),
		Name: name,
		Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-")),
	}
}

func (h *Host) topicByID(id string) *Topic {
	for _, topic := range h.Topics {
		if topic.Ref.ID == id {
			return topic
		}
	}

	return nil
}

func (h *Host) categoryByID(id string) *Category {
	for _, category := range h.Categories {
		if category.Ref.ID == id {
			return category
		}
	}

	return nil
}

func (h *Host) groupByRef(ref string) *Group {
	for _, group := range h.Groups {
		if group.Ref.ID == ref || group.Ref.Name == ref {
			return group
		}
	}

	return nil
}

type topicService struct{ h *Host }

func (s topicService) Create(_ context.Context, spec host.TopicSpec) (host.EntityRef, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	if s.h.RejectBlankTitles && strings.TrimSpace(spec.Title) == "" {
		return host.EntityRef{}, fmt.Errorf("title can't be blank")
	}

	topic := &Topic{
		Ref:              s.h.newRef(spec.Title),
		Spec:             spec,
		CustomFields:     make(map[string]any),
		PostCustomFields: make(map[string]any),
		Watchers:         make(map[string]int),
	}
	s.h.Topics = append(s.h.Topics, topic)

	return topic.Ref, nil
}

func (s topicService) SetCustomField(_ context.Context, topicID, name string, value any) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	topic := s.h.topicByID(topicID)
	if topic == nil {
		return fmt.Errorf("topic %s not found", topicID)
	}

	topic.CustomFields[name] = value

	return nil
}

func (s topicService) SetPostCustomField(_ context.Context, topicID, name string, value any) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	topic := s.h.topicByID(topicID)
	if topic == nil {
		return fmt.Errorf("topic %s not found", topicID)
	}

	topic.PostCustomFields[name] = value

	return nil
}

func (s topicService) Watch(_ context.Context, topicID, userID string, level int) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	topic := s.h.topicByID(topicID)
	if topic == nil {
		return fmt.Errorf("topic %s not found", topicID)
	}

	topic.Watchers[userID] = level

	return nil
}

type categoryService struct{ h *Host }

func (s categoryService) Create(_ context.Context, spec host.CategorySpec) (host.EntityRef, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	if s.h.RejectBlankTitles && strings.TrimSpace(spec.Name) == "" {
		return host.EntityRef{}, fmt.Errorf("name can't be blank")
	}

	category := &Category{
		Ref:          s.h.newRef(spec.Name),
		Spec:         spec,
		CustomFields: make(map[string]any),
		Watchers:     make(map[string]int),
	}
	s.h.Categories = append(s.h.Categories, category)

	return category.Ref, nil
}

func (s categoryService) SetCustomField(_ context.Context, categoryID, name string, value any) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	category := s.h.categoryByID(categoryID)
	if category == nil {
		return fmt.Errorf("category %s not found", categoryID)
	}

	category.CustomFields[name] = value

	return nil
}

func (s categoryService) Watch(_ context.Context, categoryID, userID string, level int) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	category := s.h.categoryByID(categoryID)
	if category == nil {
		return fmt.Errorf("category %s not found", categoryID)
	}

	category.Watchers[userID] = level

	return nil
}

type groupService struct{ h *Host }

func (s groupService) Create(_ context.Context, spec host.GroupSpec) (host.EntityRef, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	if s.h.RejectBlankTitles && strings.TrimSpace(spec.Name) == "" {
		return host.EntityRef{}, fmt.Errorf("name can't be blank")
	}

	group := &Group{
		Ref:          s.h.newRef(spec.Name),
		Spec:         spec,
		CustomFields: make(map[string]any),
	}
	s.h.Groups = append(s.h.Groups, group)

	return group.Ref, nil
}

func (s groupService) SetCustomField(_ context.Context, groupID, name string, value any) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	group := s.h.groupByRef(groupID)
	if group == nil {
		return fmt.Errorf("group %s not found", groupID)
	}

	group.CustomFields[name] = value

	return nil
}

func (s groupService) AddMember(_ context.Context, groupRef, userID string) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	group := s.h.groupByRef(groupRef)
	if group == nil {
		return fmt.Errorf("group %s not found", groupRef)
	}

	for _, member := range group.Members {
		if member == userID {
			return nil
		}
	}

	group.Members = append(group.Members, userID)

	return nil
}

func (s groupService) Exists(_ context.Context, groupRef string) (bool, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	return s.h.groupByRef(groupRef) != nil, nil
}

type messageService struct{ h *Host }

func (s messageService) Send(_ context.Context, spec host.MessageSpec) (host.EntityRef, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	if s.h.RejectBlankTitles && strings.TrimSpace(spec.Title) == "" {
		return host.EntityRef{}, fmt.Errorf("title can't be blank")
	}

	s.h.Messages = append(s.h.Messages, spec)

	return s.h.newRef(spec.Title), nil
}

type profileService struct{ h *Host }

func (s profileService) SetField(_ context.Context, userID, name string, value any) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	fields, ok := s.h.Profiles[userID]
	if !ok {
		fields = make(map[string]any)
		s.h.Profiles[userID] = fields
	}

	fields[name] = value

	return nil
}

type permissionService struct{ h *Host }

func (s permissionService) IsGroupMember(_ context.Context, userID, group string) (bool, error) {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	for _, name := range s.h.Memberships[userID] {
		if name == group {
			return true, nil
		}
	}

	return false, nil
}

func (s permissionService) SubscriptionEnabled(_ context.Context) bool {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	return s.h.Subscription
}

type historyService struct{ h *Host }

func (s historyService) Record(_ context.Context, entry host.HistoryEntry) error {
	s.h.mu.Lock()
	defer s.h.mu.Unlock()

	s.h.Entries = append(s.h.Entries, entry)

	return nil
}

package models

// ActionType enumerates the closed set of side effects a wizard can
// trigger. Dispatch over this set is exhaustive; there is no plugin
// mechanism.
type ActionType string

const (
	ActionOpenComposer   ActionType = "open_composer"
	ActionCreateTopic    ActionType = "create_topic"
	ActionCreateCategory ActionType = "create_category"
	ActionCreateGroup    ActionType = "create_group"
	ActionAddToGroup     ActionType = "add_to_group"
	ActionSendMessage    ActionType = "send_message"
	ActionUpdateProfile  ActionType = "update_profile"
	ActionRouteTo        ActionType = "route_to"
)

// ActionTypes lists every valid action type, in no particular order.
var ActionTypes = []ActionType{
	ActionOpenComposer,
	ActionCreateTopic,
	ActionCreateCategory,
	ActionCreateGroup,
	ActionAddToGroup,
	ActionSendMessage,
	ActionUpdateProfile,
	ActionRouteTo,
}

// Action is a declarative side effect that runs after the step named by
// RunAfter passes validation. Exactly one parameter block matching Type is
// populated.
type Action struct {
	ID       string     `json:"id"        yaml:"id"        validate:"required"`
	Type     ActionType `json:"type"      yaml:"type"      validate:"required,oneof=open_composer create_topic create_category create_group add_to_group send_message update_profile route_to"`
	RunAfter string     `json:"run_after" yaml:"run_after" validate:"required"`

	// Condition gates the run; the action is skipped when it evaluates
	// false against the just-updated submission.
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`

	Composer       *ComposerParams       `json:"composer,omitempty"        yaml:"composer,omitempty"`
	CreateTopic    *CreateTopicParams    `json:"create_topic,omitempty"    yaml:"create_topic,omitempty"`
	CreateCategory *CreateCategoryParams `json:"create_category,omitempty" yaml:"create_category,omitempty"`
	CreateGroup    *CreateGroupParams    `json:"create_group,omitempty"    yaml:"create_group,omitempty"`
	AddToGroup     *AddToGroupParams     `json:"add_to_group,omitempty"    yaml:"add_to_group,omitempty"`
	SendMessage    *SendMessageParams    `json:"send_message,omitempty"    yaml:"send_message,omitempty"`
	UpdateProfile  *UpdateProfileParams  `json:"update_profile,omitempty"  yaml:"update_profile,omitempty"`
	RouteTo        *RouteToParams        `json:"route_to,omitempty"        yaml:"route_to,omitempty"`
}

// CustomField is an arbitrary key/value pair attached to a created entity.
// Values may be structured (JSON objects round-trip as maps).
type CustomField struct {
	Name  string `json:"name"  yaml:"name"  validate:"required"`
	Value any    `json:"value" yaml:"value"`
}

// Watch registers the acting user as a watcher of the created entity at the
// given notification level.
type Watch struct {
	Level int `json:"level" yaml:"level"`
}

// ComposerParams prefill a composer entry point. All three are template
// strings; the resulting redirect URL carries them percent-encoded.
type ComposerParams struct {
	Title string   `json:"title" yaml:"title" validate:"required"`
	Body  string   `json:"body"  yaml:"body"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

type CreateTopicParams struct {
	Title    string `json:"title"    yaml:"title" validate:"required"`
	Body     string `json:"body"     yaml:"body"`
	Category string `json:"category" yaml:"category"`

	Tags             []string      `json:"tags,omitempty"               yaml:"tags,omitempty"`
	CustomFields     []CustomField `json:"custom_fields,omitempty"      yaml:"custom_fields,omitempty"`
	PostCustomFields []CustomField `json:"post_custom_fields,omitempty" yaml:"post_custom_fields,omitempty"`
	Watch            *Watch        `json:"watch,omitempty"              yaml:"watch,omitempty"`
}

type CreateCategoryParams struct {
	Name      string `json:"name"                 yaml:"name" validate:"required"`
	Slug      string `json:"slug,omitempty"       yaml:"slug,omitempty"`
	Color     string `json:"color,omitempty"      yaml:"color,omitempty"`
	TextColor string `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	Parent    string `json:"parent,omitempty"     yaml:"parent,omitempty"`

	CustomFields []CustomField `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
	Watch        *Watch        `json:"watch,omitempty"         yaml:"watch,omitempty"`
}

type CreateGroupParams struct {
	Name        string `json:"name"                  yaml:"name" validate:"required"`
	FullName    string `json:"full_name,omitempty"   yaml:"full_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	CustomFields []CustomField `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
}

// AddToGroupParams name the target group: either a literal id/name or a
// template referencing an earlier action's output key.
type AddToGroupParams struct {
	Group string `json:"group" yaml:"group" validate:"required"`
}

// SendMessageParams address one or more user or group targets. Each target
// is a template string; the host classifies resolved names as users or
// groups.
type SendMessageParams struct {
	Title   string   `json:"title"   yaml:"title"   validate:"required"`
	Body    string   `json:"body"    yaml:"body"    validate:"required"`
	Targets []string `json:"targets" yaml:"targets" validate:"required,min=1"`
}

// UpdateProfileParams map profile field names to submission keys. Values
// are taken raw from the submission so structured values such as upload
// descriptors survive intact.
type UpdateProfileParams struct {
	Fields []ProfileField `json:"fields" yaml:"fields" validate:"required,min=1,dive"`
}

type ProfileField struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Key  string `json:"key"  yaml:"key"  validate:"required"`
}

type RouteToParams struct {
	URL string `json:"url" yaml:"url" validate:"required"`
}

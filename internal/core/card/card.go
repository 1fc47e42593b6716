// Package card assembles the Hub's notification cards and their actions
//
// Cards and actions are values: once built they are never mutated. Builders are
// single use and hand their state to the built value
package card

import "time"

// Mode tells the Hub how to present an action
type Mode string

const (
	// ModeDirect posts the action without asking the user anything
	ModeDirect Mode = "DIRECT"
	// ModeUserInput collects UserInput fields before posting
	ModeUserInput Mode = "USER_INPUT"
	// ModeOpenIn opens the URL in the user's browser
	ModeOpenIn Mode = "OPEN_IN"
)

// InputType is the widget used for a user input field
type InputType string

const (
	InputText     InputType = "text"
	InputTextarea InputType = "textarea"
)

// Card is one notification for one backend entity
type Card struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	CreationDate time.Time `json:"creation_date"`
	Header       Header    `json:"header"`
	Body         Body      `json:"body"`
	Actions      []Action  `json:"actions"`
	Image        string    `json:"image,omitempty"`
	// Hash changes whenever the visible content changes
	Hash string `json:"hash"`
}

// Header is the card title line
type Header struct {
	Title    string   `json:"title"`
	Subtitle []string `json:"subtitle,omitempty"`
}

// Body holds the free text description and tabular blocks
type Body struct {
	Description string  `json:"description,omitempty"`
	Blocks      []Block `json:"fields,omitempty"`
}

// Block is a titled table of rows
type Block struct {
	Title string `json:"title,omitempty"`
	Rows  []Row  `json:"content"`
}

// Row is one key/value line, optionally linked or illustrated
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Link  string `json:"link,omitempty"`
	Image string `json:"image,omitempty"`
}

// Action is something the user can do from the card
type Action struct {
	ID                     string            `json:"id"`
	Kind                   string            `json:"kind"`
	Label                  string            `json:"label"`
	CompletedLabel         string            `json:"completed_label,omitempty"`
	Mode                   Mode              `json:"action_key"`
	Method                 string            `json:"type"`
	URL                    string            `json:"url"`
	Primary                bool              `json:"primary"`
	RemoveCardOnCompletion bool              `json:"remove_card_on_completion"`
	Params                 map[string]string `json:"request"`
	Headers                map[string]string `json:"headers,omitempty"`
	UserInput              []UserInput       `json:"user_input"`
}

// UserInput is one form field the Hub collects before posting an action
type UserInput struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      InputType `json:"format"`
	MinLength int       `json:"min_length,omitempty"`
	MaxLength int       `json:"max_length,omitempty"`
}

// Response is the card request result
type Response struct {
	Cards []Card `json:"cards"`
}

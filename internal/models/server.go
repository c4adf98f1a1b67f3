package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default multipart form field names understood by the processing server.
const (
	DefaultProjectFieldName       = "project"
	DefaultLocationFieldName      = "location"
	DefaultTOBFileFieldName       = "tob_file"
	DefaultSubconnLengthFieldName = "subcon"
	DefaultStringIDFieldName      = "string_id"
	DefaultCommentFieldName       = "comment"
)

// ServerConfig describes the processing server a project uploads to,
// including the form field names the server expects. Field names are
// configurable because deployments expose differently named upload forms.
type ServerConfig struct {
	URL                    string `json:"url"`
	BearerToken            string `json:"bearer_token"`
	ProjectFieldName       string `json:"project_field_name"`
	LocationFieldName      string `json:"location_field_name"`
	TOBFileFieldName       string `json:"tob_file_field_name"`
	SubconnLengthFieldName string `json:"subconn_length_field_name"`
	StringIDFieldName      string `json:"string_id_field_name"`
	CommentFieldName       string `json:"comment_field_name"`
}

// NewServerConfig returns a ServerConfig for the given endpoint with the
// default form field names.
func NewServerConfig(url, bearerToken string) *ServerConfig {
	return &ServerConfig{
		URL:                    url,
		BearerToken:            bearerToken,
		ProjectFieldName:       DefaultProjectFieldName,
		LocationFieldName:      DefaultLocationFieldName,
		TOBFileFieldName:       DefaultTOBFileFieldName,
		SubconnLengthFieldName: DefaultSubconnLengthFieldName,
		StringIDFieldName:      DefaultStringIDFieldName,
		CommentFieldName:       DefaultCommentFieldName,
	}
}

// Validate reports whether the configuration can reach a server.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.BearerToken, validation.Required),
	)
}

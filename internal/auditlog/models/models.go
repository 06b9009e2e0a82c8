package models

import "encoding/json"

// Subscription is the service's record that a content type is being collected.
// Webhook is kept raw; feed subscriptions in this tool never configure one.
type Subscription struct {
	ContentType string          `json:"contentType" yaml:"contentType"`
	Status      string          `json:"status" yaml:"status"`
	Webhook     json.RawMessage `json:"webhook,omitempty" yaml:"-"`
}

// ContentDescriptor points at one retrievable blob of audit records.
// Timestamps are kept as the service formats them.
type ContentDescriptor struct {
	ContentType       string `json:"contentType"`
	ContentID         string `json:"contentId"`
	ContentURI        string `json:"contentUri"`
	ContentCreated    string `json:"contentCreated"`
	ContentExpiration string `json:"contentExpiration"`
}

// ServiceErrorBody is the error envelope returned by the management API.
type ServiceErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

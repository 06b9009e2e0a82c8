package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// AuditRecord is one event from the common audit schema. The typed fields are
// the ones the tool reads; every other property the service sent is kept in
// Extra so a record encodes back to the same set of properties. The pipeline
// never mutates records; it only concatenates them.
type AuditRecord struct {
	CreationTime   string `json:"CreationTime" yaml:"CreationTime"`
	ID             string `json:"Id" yaml:"Id"`
	Workload       string `json:"Workload" yaml:"Workload"`
	Operation      string `json:"Operation" yaml:"Operation"`
	ClientIP       string `json:"ClientIP,omitempty" yaml:"ClientIP,omitempty"`
	User           string `json:"User,omitempty" yaml:"User,omitempty"`
	UserID         string `json:"UserId,omitempty" yaml:"UserId,omitempty"`
	UserKey        string `json:"UserKey,omitempty" yaml:"UserKey,omitempty"`
	RecordType     int    `json:"RecordType,omitempty" yaml:"RecordType,omitempty"`
	ResultStatus   string `json:"ResultStatus,omitempty" yaml:"ResultStatus,omitempty"`
	OrganizationID string `json:"OrganizationId,omitempty" yaml:"OrganizationId,omitempty"`
	ObjectID       string `json:"ObjectId,omitempty" yaml:"ObjectId,omitempty"`

	// Extra holds the properties without a typed field, undecoded.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// recordFields is the set of wire names bound to typed AuditRecord fields.
var recordFields = func() map[string]struct{} {
	fields := make(map[string]struct{})
	t := reflect.TypeFor[AuditRecord]()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields[name] = struct{}{}
		}
	}
	return fields
}()

// auditRecordFields drops the methods so the default codec can be reused.
type auditRecordFields AuditRecord

// Actor returns the acting identity: UserId when present, otherwise User.
func (r AuditRecord) Actor() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.User
}

func (r *AuditRecord) UnmarshalJSON(data []byte) error {
	var typed auditRecordFields
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for name := range recordFields {
		delete(all, name)
	}
	typed.Extra = nil
	if len(all) > 0 {
		typed.Extra = all
	}
	*r = AuditRecord(typed)
	return nil
}

func (r AuditRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(auditRecordFields(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}
	merged := make(map[string]json.RawMessage, len(r.Extra)+len(recordFields))
	for name, raw := range r.Extra {
		merged[name] = raw
	}
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// MarshalYAML emits the same properties as the JSON encoding, Extra included.
func (r AuditRecord) MarshalYAML() (any, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

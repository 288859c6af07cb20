package shinyclient

import (
	"encoding/json"

	"github.com/shinydb/shinydb-go/internal/errors"
)

// AuthResult is the session the server returns from authenticate/
// authenticate_api_key (spec §6). Missing fields default to empty
// strings / role "none", matching the teacher's field-presence-checked
// but non-fatal decoding in client/response.go rather than failing the
// whole parse on a partial payload.
type AuthResult struct {
	SessionID string
	APIKey    string
	Username  string
	Role      string
}

func ParseAuthResult(data []byte) (*AuthResult, error) {
	var raw struct {
		SessionID string `json:"session_id"`
		APIKey    string `json:"api_key"`
		Username  string `json:"username"`
		Role      string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ErrInvalidResponse, "malformed auth result: "+err.Error())
	}
	role := raw.Role
	if role == "" {
		role = "none"
	}
	return &AuthResult{SessionID: raw.SessionID, APIKey: raw.APIKey, Username: raw.Username, Role: role}, nil
}

// BackupMetadata describes a completed backup (spec §6). Unlike
// AuthResult, a missing field here is a hard InvalidResponse — there
// is no sensible default for a backup's path, size, or entry count.
type BackupMetadata struct {
	BackupPath string
	Timestamp  int64
	SizeBytes  uint64
	VlogCount  uint16
	EntryCount uint64
}

func ParseBackupMetadata(data []byte) (*BackupMetadata, error) {
	var raw struct {
		BackupPath *string `json:"backup_path"`
		Timestamp  *int64  `json:"timestamp"`
		SizeBytes  *uint64 `json:"size_bytes"`
		VlogCount  *uint16 `json:"vlog_count"`
		EntryCount *uint64 `json:"entry_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ErrInvalidResponse, "malformed backup metadata: "+err.Error())
	}
	if raw.BackupPath == nil || raw.Timestamp == nil || raw.SizeBytes == nil || raw.VlogCount == nil || raw.EntryCount == nil {
		return nil, errors.New(errors.ErrInvalidResponse, "backup metadata missing a required field")
	}
	return &BackupMetadata{
		BackupPath: *raw.BackupPath,
		Timestamp:  *raw.Timestamp,
		SizeBytes:  *raw.SizeBytes,
		VlogCount:  *raw.VlogCount,
		EntryCount: *raw.EntryCount,
	}, nil
}

// UserInfo describes one user, returned from list("user") (spec §6a
// supplement — filled in by analogy with AuthResult since spec.md
// names the call but not its payload shape).
type UserInfo struct {
	Username string
	Role     string
}

func ParseUserInfo(data []byte) (*UserInfo, error) {
	var raw struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ErrInvalidResponse, "malformed user info: "+err.Error())
	}
	role := raw.Role
	if role == "" {
		role = "none"
	}
	return &UserInfo{Username: raw.Username, Role: role}, nil
}

// IndexInfo describes one space/store/index entry returned from
// list(doc_type, namespace?) (spec §6a supplement, grounded on
// client.Schema.Indexes(), client/orm.go).
type IndexInfo struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

func ParseIndexInfoList(data []byte) ([]IndexInfo, error) {
	var items []IndexInfo
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.New(errors.ErrInvalidResponse, "malformed list response: "+err.Error())
	}
	return items, nil
}

// Package model holds the tracker, row, alert rule and user shapes shared by
// the client and the sandbox backend, plus the naming rules both sides agree
// on: tracker slugs, reserved system objects and the column type names.
package model

import "strings"

// Status values carried in the "status" field of every write response.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// System objects the backend keeps next to user-defined trackers.
const (
	DynamicAPIsObject    = "_Dynamic_Apis"
	UserManagementObject = "_User_Management"
	AlertRulesObject     = "_Alert_Rules"
	AlertFindsObject     = "_Alert_Finds"
	IDColumn             = "_id"
	CreatedAtColumn      = "_timestamp_created"
	systemObjectPrefix   = "_"
)

// Page paths the frontend navigates between.
const (
	IndexPath          = "/"
	LoginPath          = "/login/"
	LogoutPath         = "/logout/"
	TrackersPath       = "/trackers/"
	NewTrackerPath     = "/trackers/new/"
	ProfilePrefix      = "/trackers/profile/"
	AlertsPath         = "/alerts/"
	UserManagementPath = "/user-management/"
)

// Row is a single table row: column name -> scalar cell value.
// Values are strings, json.Number, bool or nil as decoded from the API.
type Row map[string]any

// Copy returns a shallow copy of the row.
func (r Row) Copy() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// PropertyType is the declared type of a tracker column.
type PropertyType string

const (
	TypeBoolean  PropertyType = "Boolean"
	TypeDateTime PropertyType = "DateTime"
	TypeInteger  PropertyType = "Integer"
	TypeFloat    PropertyType = "Float"
	TypeString   PropertyType = "String"
	TypeUnicode  PropertyType = "Unicode"
)

// PropertyTypes lists the selectable property types in form order.
var PropertyTypes = []PropertyType{TypeBoolean, TypeDateTime, TypeInteger, TypeFloat, TypeString, TypeUnicode}

// Valid reports whether t is one of PropertyTypes.
func (t PropertyType) Valid() bool {
	for _, p := range PropertyTypes {
		if p == t {
			return true
		}
	}
	return false
}

// SQLType maps a property type to the column type name the backend reports.
func (t PropertyType) SQLType() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeDateTime:
		return "DATETIME"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "VARCHAR"
	case TypeUnicode:
		return "UNICODE"
	default:
		return ""
	}
}

// Property is one column definition of a tracker.
type Property struct {
	Name     string       `json:"name" validate:"required"`
	Type     PropertyType `json:"type" validate:"oneof=Boolean DateTime Integer Float String Unicode"`
	Nullable bool         `json:"nullable"`
	Unique   bool         `json:"unique"`
}

// TrackerSchema is the payload of a tracker creation request.
type TrackerSchema struct {
	Name       string     `json:"name" validate:"required"`
	Properties []Property `json:"properties" validate:"min=1,dive"`
}

// TrackerInfo summarizes one tracker for the all-trackers listing.
type TrackerInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	API   string `json:"api"`
}

// Column is a column name with the backend's SQL type name.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AlertRule is a stored condition evaluated against inserted tracker rows.
type AlertRule struct {
	Name        string `json:"name"`
	ObjectName  string `json:"object_name"`
	ColumnName  string `json:"column_name"`
	ColumnValue string `json:"column_value"`
}

// User is a dashboard account.
type User struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GraphData holds per-day row counts of a tracker.
type GraphData struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Slug turns a tracker name into its path component:
// lowercase with spaces replaced by underscores.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// IsSystemObject reports whether an object or column name is reserved by the backend.
func IsSystemObject(name string) bool {
	return strings.HasPrefix(name, systemObjectPrefix)
}

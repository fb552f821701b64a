// Package id generates prefix-qualified, K-sortable identifiers ("apv_01h2x...")
// for every stored entity. The prefix tells an operator which collection an id
// belongs to when it shows up in a log line or audit record.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

type Prefix string

const (
	PrefixApproval     Prefix = "apv"
	PrefixLeave        Prefix = "lv"
	PrefixUser         Prefix = "usr"
	PrefixSession      Prefix = "ses"
	PrefixNotification Prefix = "ntf"
	PrefixAudit        Prefix = "aud"
	PrefixEvent        Prefix = "evt"
	PrefixEmployee     Prefix = "emp"
	PrefixVaultItem    Prefix = "vlt"
	PrefixAttendance   Prefix = "att"
)

// New panics on an invalid prefix; prefixes are compile-time constants.
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

// HasPrefix reports whether s parses as a TypeID with the expected prefix.
func HasPrefix(s string, expected Prefix) bool {
	tid, err := typeid.Parse(s)
	if err != nil {
		return false
	}
	return tid.Prefix() == string(expected)
}

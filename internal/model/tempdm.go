package model

import "strings"

// tempDMPrefix marks the sentinel id of a direct chat that exists only
// locally, before the server has materialized the conversation.
const tempDMPrefix = "temp-dm:"

// TempDMID derives the deterministic placeholder chat id for a target user.
func TempDMID(userID string) string {
	return tempDMPrefix + userID
}

// IsTempDMID reports whether id is a local placeholder id.
func IsTempDMID(id string) bool {
	return strings.HasPrefix(id, tempDMPrefix)
}

// TempDMTarget extracts the target user id from a placeholder id.
// Returns "" when id is not a placeholder.
func TempDMTarget(id string) string {
	if !IsTempDMID(id) {
		return ""
	}
	return strings.TrimPrefix(id, tempDMPrefix)
}

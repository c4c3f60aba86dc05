package domain

import "strings"

// User is a directory entry. MailAddress may be empty; such users are
// listed but never appear in per-user aggregates.
type User struct {
	DisplayName   string `json:"displayName"`
	Domain        string `json:"domain"`
	MailAddress   string `json:"mailAddress"`
	PrincipalName string `json:"principalName"`
}

// HasMail reports whether the user can be keyed in an aggregate.
func (u User) HasMail() bool {
	return strings.TrimSpace(u.MailAddress) != ""
}

// UserWorkload is one entry of the assignment aggregate.
type UserWorkload struct {
	DisplayName string `json:"displayName"`
	TaskCount   int    `json:"taskCount"`
}

// TaskCounts maps a user's mail address to their workload. It is built per
// request and never cached.
type TaskCounts map[string]UserWorkload

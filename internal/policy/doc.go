// Package policy is the single place where role-dependent behaviour is
// decided. It holds the route table consumed by the navigation guard, the
// capability table consulted before every action, and the form rules that
// depend on ownership, level or status. Everything here is pure.
package policy

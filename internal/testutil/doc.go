// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing agents, functions and conversation
// histories. They are not intended for production usage.
package testutil

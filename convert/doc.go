// Package convert provides jsonapi.TypeConverters for common non-native
// attribute types: RFC3339 times, UUIDs and BCP 47 language tags.
package convert

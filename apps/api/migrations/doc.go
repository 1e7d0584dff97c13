// Package migrations holds the schema history of the api app.
//
// Each file registers one descriptor from init(). Files are named after the
// descriptor and must never be edited once applied to a live database; add a
// new descriptor instead.
package migrations

import "github.com/ridoystarlord/schedmigrate/migration"

// App is the app label shared by every descriptor in this package.
const App = "api"

func dependsOn(name string) []migration.Key {
	return []migration.Key{{App: App, Name: name}}
}

func ptr(s string) *string {
	return &s
}

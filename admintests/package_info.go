// Package admintests contains the admin API tests themselves and their supporting API.
//
// Infrastructure that is not specific to the backend's domain, such as running tests, recording
// outcomes and applying a success policy, is in the lower-level framework package.
package admintests

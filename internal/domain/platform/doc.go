// Package platform contains the domain model for linking a company to the
// external social/advertising platform: externally-owned resources (pages,
// pixels), ownership arbitration records, the authorization context carried
// through the OAuth redirect, and the port interfaces implemented by the
// infrastructure layer.
package platform

// Package types defines the Store, Table and Resolver interfaces, the four
// recipe entities, and the standard errors for the Workbench storage system.
package types

// Package cli provides the studydeck command-line client.
//
// The command tree is built with cobra. Every invocation loads the config,
// opens the local store and wires the record services; sync commands also
// build the remote client, the sync engine and its Prometheus collectors.
//
//	studydeck user set --id u1 --name Ann
//	studydeck list add "Math" --offline
//	studydeck card add <list-id> "Algebra" --content -
//	studydeck sync --watch --interval 1m
package cli

/*
Package ports defines the driven ports (interfaces) around the Turing machine core.

These interfaces decouple the interpreter from external implementations,
allowing runs to be persisted in various storage backends and definitions to
be served from different sources.

# Key Interfaces

  - RunStore: Responsible for persisting and loading finished runs.
  - Catalog: Responsible for listing and loading named machine definitions.

Each interface ships with a reusable contract suite (RunRunStoreContract,
RunCatalogContract) that adapters execute from their own tests.
*/
package ports

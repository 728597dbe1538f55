// Package mock provides test doubles for the ai package interfaces.
//
// All mocks support behavior injection through function fields and default
// to deterministic behavior, so tests never depend on external services.
package mock

// Package worker implements the fixed-size consumer pool that drains the
// dispatch queue. Each worker re-validates a dispatched message against the
// currently persisted work item, simulates the variable-cost computation,
// and persists the completed state. Stale or corrupt messages are logged and
// dropped without retry.
package worker

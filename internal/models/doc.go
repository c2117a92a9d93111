// Package models defines the core domain models for slotledger.
//
// # Transaction log
//
// A TransactionRecord is one slot transfer as stored by the scheduling
// application: a giver surrenders a reserved slot and a claimant takes it.
// Records are owned by the transaction log; the ledger only reads them and
// updates a handful of fields (status, settled flag, claimant).
//
// # Participants
//
// Participants are identified by name. The directory maps each name to a
// ParticipantPreference carrying the opt-in flag that decides whether the
// slots a participant gives away are billed at all.
//
// # Settlement
//
// A SettlementBatch groups the payments computed for one date range. Each
// payment is persisted as a Pairing between a debtor and a creditor and is
// confirmed independently. Closing a batch marks every transaction that fed
// its pairings as settled.
//
// # Design Principles
//
//  1. Records are closed types: Status is an enumeration validated when a
//     record enters or leaves the store.
//  2. Balances are never stored; they are recomputed from the log.
//  3. Relationships use ID and name strings instead of pointers.
package models

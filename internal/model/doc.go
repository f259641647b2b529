// Package model defines shared domain types used across the acenta client.
//
// Conventions:
//   - Enum values are the exact strings the backend sends and accepts
//   - Prices are decimal strings (e.g. "1250.00"); they are displayed, never computed on
//   - Labels are the Turkish display names shown to partners
package model

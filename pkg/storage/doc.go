// Package storage contains types and interfaces, so that different persistence layers can be implemented.
//
// Interfaces in this package must:
//   - return ErrNotFound if the method is looking for one exact item in the database and it is not found
//   - return empty array for methods that can return multiple results and no result is found
//   - return ErrInstanceLocked when a workflow instance or job is already locked
//   - return ErrLockNotOwned when a write requires a lock held by somebody else
//   - return copies, callers may mutate returned values freely
package storage

/*
Package localstore is the on-device durable store, backed by SQLite
(modernc.org/sqlite, pure Go).

It holds three kinds of data, all independent of network availability:

  - backups: one "current" slot per key, overwritten wholesale on every
    debounced save
  - snapshots: named, timestamped rollback points created by users, with
    list/create/delete/restore
  - the media archive: large binary payloads keyed by media id, kept out
    of the sync document so full-sync payloads stay small

ScanAndRepair handles local corruption the blunt way: a backup row whose
payload is no longer valid JSON is reported and deleted. Losing that one
key is acceptable; crashing is not.
*/
package localstore

/*
Package auth provides identity helpers for the Pizza Night core.

There is deliberately no cryptographic identity: users are unauthenticated
nicknames guarded by a 4-digit PIN. This package covers what identity does
exist:

  - GenerateToken: random base-36 ids for comments, replies and media,
    unique enough to make duplicate-delivery detection by id reliable
  - NewPeerID: per-session peer identity for the broadcast room
  - nickname normalization ("@"-prefix, case-insensitive comparison)
  - PIN shape validation
*/
package auth

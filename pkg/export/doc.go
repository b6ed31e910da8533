// Package export turns schema snapshots into artifacts and delivers them.
//
// Renderer runs the proto3 and diagram generators side by side and keeps
// recent results in an expiring LRU keyed by the content hash of the
// forest, so repeated exports of an unchanged document are free.
//
//	r := export.NewRenderer(256, 10*time.Minute, metrics)
//	artifacts, err := r.Render(ctx, session.Snapshot())
//
// A Publisher writes artifacts outside the editor: DirPublisher to a local
// directory and S3Publisher to an S3-compatible bucket.
package export

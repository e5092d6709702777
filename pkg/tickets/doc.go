// Package tickets opens and closes support tickets.
//
// A ticket is a text channel created inside a configured category. Manager.Create provisions the channel,
// stores the ticket and returns it straight away, then finishes setting the channel up in the background:
// pings, the pinned opening message, the claim reaction, collecting a topic from the creator when the category
// requires one, and the opening questions. Manager.Close posts a notice, snapshots the pinned messages, marks the
// ticket closed and deletes the channel after a short grace period.
package tickets

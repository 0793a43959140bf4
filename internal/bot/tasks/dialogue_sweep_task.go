package tasks

import "context"

// newDialogueSweepTask creates the scheduled task that drops dialogue states
// abandoned for longer than the configured TTL. Without it a user who walks
// away mid-flow would pin their state forever.
func newDialogueSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "dialogue_sweep")
	ttl := deps.Config.Dialogue.TTL

	return func(ctx context.Context) error {
		removed := deps.Tracker.SweepStale(ttl)
		if removed > 0 {
			log.InfoContext(ctx, "Expired abandoned dialogues", "removed", removed, "ttl", ttl)
		}
		return nil
	}
}

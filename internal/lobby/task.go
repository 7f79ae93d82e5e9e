// internal/lobby/task.go
package lobby

import "context"

// Run drives the actor until the lobby empties or the server shuts down.
// Every state transition happens on this goroutine; callers only ever see
// the inbox and the frames fanned out to their writers.
func (l *Lobby) Run(ctx context.Context) {
	l.log.Info("lobby actor started")
	defer l.log.Info("lobby actor stopped")
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-l.inbox:
			switch m := msg.(type) {
			case Join:
				l.handleJoin(m)
			case Leave:
				if l.handleLeave(m.PlayerID) {
					return
				}
			case Act:
				l.handleAction(m.PlayerID, m.Action)
			case Stats:
				m.Reply <- l.stats()
			}
		}
	}
}

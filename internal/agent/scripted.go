package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// ScriptedFactory returns canned replies instead of calling a model.
// It backs the dry-run mode and the test suites.
type ScriptedFactory struct {
	mu sync.Mutex
	// replies maps role ID to a queue of replies, consumed in order.
	replies map[string][]Reply
	// errs maps role ID to a queue of errors, consumed in order and
	// interleaved before replies.
	errs map[string][]error
	// calls records every prompt seen, per role.
	calls map[string][]string
}

// NewScriptedFactory creates an empty scripted factory. Roles with no
// scripted replies echo a placeholder describing the invocation.
func NewScriptedFactory() *ScriptedFactory {
	return &ScriptedFactory{
		replies: make(map[string][]Reply),
		errs:    make(map[string][]error),
		calls:   make(map[string][]string),
	}
}

// Queue appends a reply to the role's script.
func (f *ScriptedFactory) Queue(roleID string, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[roleID] = append(f.replies[roleID], reply)
}

// QueueText appends a text-only reply to the role's script.
func (f *ScriptedFactory) QueueText(roleID, text string) {
	f.Queue(roleID, Reply{Text: text})
}

// QueueError appends an error to the role's script. Errors are consumed
// before any remaining replies for the role.
func (f *ScriptedFactory) QueueError(roleID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[roleID] = append(f.errs[roleID], err)
}

// Calls returns every prompt a role has received, in order.
func (f *ScriptedFactory) Calls(roleID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls[roleID]...)
}

// NewAgent implements Factory.
func (f *ScriptedFactory) NewAgent(role *models.Role) Agent {
	return &scriptedAgent{factory: f, roleID: role.ID}
}

type scriptedAgent struct {
	factory *ScriptedFactory
	roleID  string
}

func (a *scriptedAgent) Converse(ctx context.Context, prompt string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	f := a.factory
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[a.roleID] = append(f.calls[a.roleID], prompt)

	if queue := f.errs[a.roleID]; len(queue) > 0 {
		err := queue[0]
		f.errs[a.roleID] = queue[1:]
		return Reply{}, err
	}
	if queue := f.replies[a.roleID]; len(queue) > 0 {
		reply := queue[0]
		f.replies[a.roleID] = queue[1:]
		return reply, nil
	}
	return Reply{Text: fmt.Sprintf("[%s] completed: %.80s", a.roleID, prompt)}, nil
}

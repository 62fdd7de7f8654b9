package users

import (
	"sync"

	"github.com/MeAsCoder/PaidTasks/completion"
	"github.com/MeAsCoder/PaidTasks/utils"
)

var (
	machineOnce sync.Once
	machineInst *completion.Machine
)

// machine returns the shared completion state machine. Redis backs it when
// available so completion state survives restarts and is shared across
// instances; otherwise an in-memory store is used.
func machine() *completion.Machine {
	machineOnce.Do(func() {
		if utils.RedisClient != nil {
			machineInst = completion.New(completion.NewRedisStore(utils.RedisClient))
		} else {
			machineInst = completion.New(completion.NewMemoryStore())
		}
	})
	return machineInst
}

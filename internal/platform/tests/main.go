// Package tests bootstraps the resources custody tests run against: a
// filesystem backed DB in a scratch directory, an in memory ledger, an event
// capture sink and a controllable clock.
package tests

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/events"
	"github.com/vaultlane/custody/pkg/ledger"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
	"github.com/tokenized/pkg/logger"
)

// StartTime is the block time tests begin at.
var StartTime = time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)

type Test struct {
	logConfig *logger.Config
	path      string

	DB     *db.DB
	Ledger *ledger.Memory
	Events *events.Capture
	Clock  *clock.TestClock
}

// Setup creates the test resources.
func (test *Test) Setup(ctx context.Context) error {
	test.logConfig = logger.NewDevelopmentConfig()
	test.logConfig.Main.SetWriter(os.Stdout)
	test.logConfig.Main.Format |= logger.IncludeSystem | logger.IncludeMicro
	test.logConfig.Main.MinLevel = logger.LevelDebug

	ctx = logger.ContextWithLogConfig(ctx, test.logConfig)

	uid, _ := uuid.NewRandom()
	test.path = fmt.Sprintf("./tmp/%s", uid)

	var err error
	test.DB, err = db.New(&db.StorageConfig{
		Bucket: "standalone",
		Root:   test.path,
	})
	if err != nil {
		return errors.Wrap(err, "Failed to create DB")
	}

	test.Ledger = ledger.NewMemory()
	test.Events = events.NewCapture()
	test.Clock = clock.NewTestClock(StartTime)

	return nil
}

// Close releases the test resources.
func (test *Test) Close(ctx context.Context) {
	if test.DB != nil {
		test.DB.Close()
	}
	if len(test.path) > 0 {
		os.RemoveAll(test.path)
	}
}

// Context returns a context carrying the log config and call values for a
// call signed by the caller. Each call gets a fresh transaction id and
// previous block hash, and the current test clock time.
func (test *Test) Context(ctx context.Context, caller address.Address) context.Context {
	uid, _ := uuid.NewRandom()
	v := node.Values{
		TraceID:   uid.String(),
		Caller:    caller,
		TxID:      RandomHash(),
		PrevBlock: RandomHash(),
		Now:       state.NewTimestamp(test.Clock.Now()),
	}
	ctx = node.ContextWithValues(ctx, &v)

	return logger.ContextWithLogConfig(ctx, test.logConfig)
}

// Advance moves the test clock forward.
func (test *Test) Advance(d time.Duration) {
	test.Clock.SetTime(test.Clock.Now().Add(d))
}

// New bootstraps a Test or panics. Helper for test mains.
func New(ctx context.Context) *Test {
	test := &Test{}
	if err := test.Setup(ctx); err != nil {
		panic(err)
	}
	return test
}

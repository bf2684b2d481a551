package lifecycle

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"lunaura/app/models/reading"
	"lunaura/pkg/logger"
)

// Guard 设备归属校验
type Guard struct {
	store *Store
}

// NewGuard 创建 Guard
func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Resolve 读取记录并校验归属
// 无主记录归属当前设备；属于其他设备时与不存在一样返回 NotFound
func (g *Guard) Resolve(ctx context.Context, kind, id, deviceID string) (reading.Record, error) {
	if deviceID == "" {
		return nil, E(InvalidInput, "Missing X-Device-Id header")
	}

	rec, err := g.store.Load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	st := rec.State()
	if st.DeviceID == "" {
		adopted, err := g.store.Repo(kind).AssignDevice(ctx, id, deviceID)
		if err != nil {
			return nil, errors.Wrapf(err, "assign device for %s", id)
		}
		if !adopted {
			// 并发请求已先一步绑定
			return g.reload(ctx, kind, id, deviceID)
		}
		st.DeviceID = deviceID
		logger.InfoString("Lifecycle", "Guard", fmt.Sprintf("记录 %s/%s 绑定设备 %s", kind, id, deviceID))
		return rec, nil
	}

	if !st.OwnedBy(deviceID) {
		return nil, E(NotFound, "Reading not found")
	}
	return rec, nil
}

func (g *Guard) reload(ctx context.Context, kind, id, deviceID string) (reading.Record, error) {
	rec, err := g.store.Load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !rec.State().OwnedBy(deviceID) {
		return nil, E(NotFound, "Reading not found")
	}
	return rec, nil
}

package server

import "time"

// StartTicker 启动房间的 Tick 循环（单线程推进世界），频率取自世界配置（默认 20 TPS）
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	interval := time.Duration(r.model.Tuning.TickDuration() * float64(time.Second))
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				r.shutdown()
				return
			case <-ticker.C:
				r.Step()
			}
		}
	}()
}

// Step 核心循环：处理入站 → 更新世界 → 广播结果（由 UpdateWorld 与各入站处理完成）
func (r *Room) Step() {
	start := time.Now()
	r.tickSeq.Add(1)
	r.ProcessInbound()
	r.UpdateWorld()
	r.publish()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Stop 停止 Tick 循环并断开所有成员
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		if !r.tickerStarted {
			r.shutdown()
			close(r.done)
			return
		}
		close(r.stop)
		<-r.done
	})
}

func (r *Room) shutdown() {
	for _, id := range r.memberIDs() {
		if c := r.members[id].Conn; c != nil {
			_ = c.Close()
		}
		delete(r.members, id)
	}
	Log.Infof("room=%s stopped after %d ticks", r.ID, r.tickSeq.Load())
}

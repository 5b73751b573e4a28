package injector

import (
	"github.com/gocrud/inject/graph"
	"github.com/gocrud/inject/logging"
)

// resolve 在解析链 ch 上解析节点 id。
//
// slot 的锁只在检查和提交状态时持有，解析参数期间不持有。
// 同一个节点的构造是串行的：其他调用者在 done 上等待，醒来后重新检查状态。
func (inj *Injector) resolve(ch *chain, id graph.NodeID) (any, error) {
	n, _ := inj.graph.Node(id)
	if ch.contains(id) {
		return nil, inj.circular(ch, n)
	}

	s := &inj.slots[id]
	for {
		s.mu.Lock()
		switch s.state {
		case SlotCached:
			v := s.value
			s.mu.Unlock()
			return inj.clone(ch, n, v)

		case SlotInProgress:
			done := s.done
			s.mu.Unlock()
			if err := inj.await(ch, s, done); err != nil {
				return nil, inj.circular(ch, n)
			}
			continue

		default:
			s.begin(ch)
			s.mu.Unlock()

			v, err := inj.construct(ch, n)

			s.mu.Lock()
			s.commit(v, err == nil && n.Caching())
			s.mu.Unlock()

			if err != nil {
				return nil, err
			}
			return inj.clone(ch, n, v)
		}
	}
}

// construct 依次解析参数并调用构造函数
func (inj *Injector) construct(ch *chain, n *graph.Node) (any, error) {
	ch.push(n.ID())
	defer ch.pop()

	log := inj.logger.WithFields(logging.F("node", n.Name()))
	log.Debug("constructing", logging.F("depth", len(ch.stack)))

	args := make([]any, n.NumArgs())
	for i := range args {
		v, err := inj.resolve(ch, n.Arg(i))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	v, err := n.Construct(args)
	if err != nil {
		log.Warn("construction failed", logging.F("error", err))
		return nil, &ConstructionError{Node: n.Name(), Chain: ch.path(inj.graph), Cause: err}
	}

	log.Debug("constructed", logging.F("cached", n.Caching()))
	return v, nil
}

// clone 复制交给调用方的值；Clone 方法 panic 时按构造失败报告，缓存的值不受影响
func (inj *Injector) clone(ch *chain, n *graph.Node, v any) (any, error) {
	out, err := n.Clone(v)
	if err != nil {
		inj.logger.Warn("clone failed", logging.F("node", n.Name()), logging.F("error", err))
		return nil, &ConstructionError{Node: n.Name(), Chain: append(ch.path(inj.graph), n.Name()), Cause: err}
	}
	return out, nil
}

// await 等待其他解析链完成 s 的构造。
// 等待前沿等待图检查：从 s 的构造者出发，沿“构造者正在等待的 slot -> 该 slot 的构造者”前进，
// 若回到 ch 则说明等待会形成环，返回 errWouldDeadlock。
func (inj *Injector) await(ch *chain, s *slot, done chan struct{}) error {
	inj.waits.Lock()
	cur, curDone := s, done
	for range len(inj.slots) + 1 {
		cur.mu.Lock()
		live := cur.state == SlotInProgress && cur.done == curDone
		owner := cur.owner
		cur.mu.Unlock()
		if !live || owner == nil {
			break
		}
		if owner == ch {
			inj.waits.Unlock()
			return errWouldDeadlock
		}
		if owner.blocked == nil {
			break
		}
		cur, curDone = owner.blocked, owner.blockedDone
	}
	ch.blocked, ch.blockedDone = s, done
	inj.waits.Unlock()

	<-done

	inj.waits.Lock()
	ch.blocked, ch.blockedDone = nil, nil
	inj.waits.Unlock()
	return nil
}

func (inj *Injector) circular(ch *chain, n *graph.Node) error {
	err := &CircularDependencyError{Node: n.Name(), Chain: ch.path(inj.graph)}
	inj.logger.Warn("circular dependency detected",
		logging.F("node", n.Name()),
		logging.F("chain", err.Chain),
	)
	return err
}

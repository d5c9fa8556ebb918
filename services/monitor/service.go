// Package monitor watches the node's bus traffic: it logs link events,
// periodically summarises the retained node status, and raises a retained
// alert when joins keep failing.
package monitor

import (
	"context"
	"time"

	"loranode-go/bus"
	"loranode-go/errcode"
	"loranode-go/types"
	"loranode-go/x/logx"
)

var (
	topicConfigNode = bus.T("config", "node")
	topicEvents     = bus.T("node", "event", bus.SingleWild)
	topicStatus     = bus.T("node", "status")
	TopicAlert      = bus.T("node", "alert")
)

const defaultHeartbeat = time.Minute

// eventQueueLen covers a run of join retries while the loop is parked.
const eventQueueLen = 32

type Service struct {
	// Heartbeat is the status summary period; zero means one minute.
	Heartbeat time.Duration

	log       logx.Logger
	threshold uint16
	streak    uint16
	alerted   bool
	counts    map[string]uint32
	status    types.NodeStatus
}

func New(log logx.Logger) *Service {
	if log == nil {
		log = logx.Discard
	}
	return &Service{
		log:       log,
		threshold: types.DefaultNodeConfig().JoinAlertAfter,
		counts:    make(map[string]uint32),
	}
}

type subs struct {
	cfg, events, status *bus.Subscription
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, sb subs) {
	defer conn.Unsubscribe(sb.cfg)
	defer conn.Unsubscribe(sb.events)
	defer conn.Unsubscribe(sb.status)

	every := s.Heartbeat
	if every <= 0 {
		every = defaultHeartbeat
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Infof("monitor stopping")
			return
		case <-tick.C:
			s.summary()
		case msg := <-sb.cfg.Channel():
			s.onConfig(msg)
		case msg := <-sb.status.Channel():
			if st, ok := msg.Payload.(types.NodeStatus); ok {
				s.status = st
			}
		case msg := <-sb.events.Channel():
			s.onEvent(conn, msg)
		}
	}
}

// Start subscribes before returning so no event published afterwards is
// missed, then serves in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	sb := subs{
		cfg:    conn.Subscribe(topicConfigNode),
		events: conn.SubscribeQueue(topicEvents, eventQueueLen),
		status: conn.Subscribe(topicStatus),
	}
	go s.serviceLoop(ctx, conn, sb)
	return nil
}

func (s *Service) onConfig(msg *bus.Message) {
	cfg, err := types.ParseNodeConfig(msg.Payload)
	if err != nil {
		s.log.Warnf("ignoring node config: %v", err)
		return
	}
	if cfg.JoinAlertAfter != s.threshold {
		s.log.Infof("join alert threshold set to %d", cfg.JoinAlertAfter)
	}
	s.threshold = cfg.JoinAlertAfter
}

func (s *Service) onEvent(conn *bus.Connection, msg *bus.Message) {
	info, ok := msg.Payload.(types.LinkEventInfo)
	if !ok {
		return
	}
	s.counts[info.Kind]++

	switch info.Kind {
	case types.EvJoinFailed.String(), types.EvRejoinFailed.String():
		s.streak++
		s.log.Warnf("%s (%d in a row)", info.Kind, s.streak)
		if s.streak >= s.threshold {
			s.alerted = true
			conn.Publish(conn.NewMessage(TopicAlert, types.NodeAlert{
				Code:  string(errcode.JoinFailed),
				Count: s.streak,
				TSms:  info.TSms,
			}, true))
		}
	case types.EvJoined.String():
		s.streak = 0
		s.log.Infof("joined")
		if s.alerted {
			s.alerted = false
			s.log.Infof("join alert cleared")
			conn.Publish(conn.NewMessage(TopicAlert, nil, true))
		}
	case types.EvLinkDead.String():
		s.log.Warnf("link dead")
	case types.EvTxComplete.String():
		if info.DataLen > 0 {
			s.log.Infof("tx complete, ack=%t, %d bytes on port %d", info.Ack, info.DataLen, info.Port)
		} else {
			s.log.Debugf("tx complete, ack=%t", info.Ack)
		}
	default:
		s.log.Debugf("%s", info.Kind)
	}
}

func (s *Service) summary() {
	st := s.status
	s.log.Infof("status %s: uplinks=%d skipped=%d battery=%dmV join_failures=%d",
		st.State, st.Uplinks, st.Skipped, st.BatteryMilliV, st.JoinFailures)
}

// Count reports how many events of kind have been seen. Only safe to call
// when the service is not running.
func (s *Service) Count(kind types.EventKind) uint32 { return s.counts[kind.String()] }

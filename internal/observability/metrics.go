package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SwipesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "commit_swipe", Name: "swipes_total", Help: "Dismissed cards by direction and input source"},
		[]string{"direction", "source"},
	)
	SnapBacksTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "commit_swipe", Name: "snap_backs_total", Help: "Drags that ended without a swipe"})
	MatchesTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "commit_swipe", Name: "matches_total", Help: "Mutual matches surfaced"})
	ActionLatency  = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "commit_swipe", Name: "action_submit_seconds", Help: "Action submission latency seconds"})
	ActionErrors   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "commit_swipe", Name: "action_submit_errors_total", Help: "Failed action submissions"})

	UnreadCount = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "commit_swipe", Name: "unread_count", Help: "Last polled unread message count"})
	PollErrors  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "commit_swipe", Name: "notification_poll_errors_total", Help: "Failed notification polls"})

	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "commit_swipe", Name: "live_events_total", Help: "Events received over the websocket"},
		[]string{"type"},
	)

	OutboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "commit_swipe", Name: "remote_requests_total", Help: "Requests sent to the remote service"},
		[]string{"method", "op", "status"},
	)
	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "commit_swipe",
			Name:      "remote_request_duration_seconds",
			Help:      "Remote service request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "op", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "commit_swipe", Name: "status_http_requests_total", Help: "Requests handled by the local status server"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "commit_swipe",
			Name:      "status_http_request_duration_seconds",
			Help:      "Local status server latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

package services

import (
	"log"
	"time"

	"roster-rank-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartAutoPromotionSweep runs the rule engine over all active members on an
// interval. Eligible members get a pending proposal queued; when the target
// rank has auto-rankup enabled the promotion is applied directly with
// trigger=auto. The sweep only ever goes through the public service
// operations, so every change lands in the history ledger.
func (s *ProposalService) StartAutoPromotionSweep(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ids, err := s.RankState.Users.ActiveMemberIDs()
			if err != nil {
				log.Printf("[AutoPromotion] DB error listing members: %v", err)
				return
			}

			for _, uid := range ids {
				next, verdict, err := s.EvaluateNextRank(uid)
				if err != nil {
					log.Printf("[AutoPromotion] Failed to evaluate %s: %v", uid, err)
					continue
				}
				if next == nil || !verdict.Eligible {
					continue
				}

				if next.AutoRankupEnabled {
					if _, err := s.RankState.AssignRank(uid, next.ID, models.TriggerAuto, nil); err != nil {
						log.Printf("[AutoPromotion] Failed to auto-rank %s → %s: %v", uid, next.Name, err)
					} else {
						log.Printf("✅ Auto-promoted %s → %s", uid, next.Name)
					}
					continue
				}

				state, err := s.RankState.GetState(uid)
				if err != nil {
					log.Printf("[AutoPromotion] Failed to read state for %s: %v", uid, err)
					continue
				}
				if _, err := s.CreatePending(uid, state.CurrentRankID, next.ID, models.TriggerAuto); err != nil {
					log.Printf("[AutoPromotion] Failed to queue proposal for %s: %v", uid, err)
				}
			}
		}),
	)
}

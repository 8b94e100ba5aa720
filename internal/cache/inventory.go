package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	TravelerKeyPrefix          = "traveler:%d"
	TravelerDashboardKeyPrefix = "dashboard:traveler:%d"
	AdminDashboardKey          = "dashboard:admin"
	SubscriptionPlansKey       = "subscription_plans"
	RevokedTokenKeyPrefix      = "blacklist:%s"
)

const (
	TravelerTTL          = 5 * time.Minute
	DashboardTTL         = time.Minute
	SubscriptionPlansTTL = 10 * time.Minute
)

func TravelerKey(travelerID uint) string {
	return fmt.Sprintf(TravelerKeyPrefix, travelerID)
}

func TravelerDashboardKey(travelerID uint) string {
	return fmt.Sprintf(TravelerDashboardKeyPrefix, travelerID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateTraveler drops the cached profile and the traveler's dashboard.
func InvalidateTraveler(ctx context.Context, travelerID uint) {
	Invalidate(ctx, TravelerKey(travelerID), TravelerDashboardKey(travelerID), AdminDashboardKey)
}

func InvalidateSubscriptionPlans(ctx context.Context) {
	Invalidate(ctx, SubscriptionPlansKey, AdminDashboardKey)
}

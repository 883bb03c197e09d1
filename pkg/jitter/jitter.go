// Package jitter добавляет случайность в интервалы повторных попыток,
// чтобы переподключающиеся клиенты не били в базу одновременно.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
	rngMu sync.Mutex
)

// Duration возвращает d, растянутую случайным образом до d*(1+factor).
func Duration(d time.Duration, factor float64) time.Duration {
	rngMu.Lock()
	defer rngMu.Unlock()
	return d + time.Duration(rng.Float64()*factor*float64(d))
}

// ExponentialBackoff вычисляет задержку перед попыткой attempt (с нуля):
// base удваивается на каждую попытку, ограничивается max, затем к результату
// применяется джиттер с коэффициентом factor.
func ExponentialBackoff(base, max time.Duration, attempt int, factor float64) time.Duration {
	d := base
	for i := 0; i < attempt && d < max; i++ {
		d *= 2
	}
	if d > max {
		d = max
	}

	return Duration(d, factor)
}

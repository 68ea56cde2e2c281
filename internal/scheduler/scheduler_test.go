package scheduler

import (
	"testing"
	"time"
)

func TestParseRunAt(t *testing.T) {
	tod, err := parseRunAt("00:30")
	if err != nil {
		t.Fatalf("解析 run_at 失败: %v", err)
	}
	if tod.hour != 0 || tod.minute != 30 {
		t.Errorf("期望 00:30，实际=%02d:%02d", tod.hour, tod.minute)
	}

	if _, err := parseRunAt("25:00"); err == nil {
		t.Error("非法时刻应返回错误")
	}
	if _, err := parseRunAt("midnight"); err == nil {
		t.Error("非法格式应返回错误")
	}
}

func TestNextRunTime_SameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	next := nextRunTime(now, timeOfDay{hour: 23, minute: 30})

	want := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, next)
	}
}

func TestNextRunTime_NextDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	next := nextRunTime(now, timeOfDay{hour: 0, minute: 30})

	want := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, next)
	}
}

// 恰好在运行时刻触发时应排到次日，避免同日重复执行
func TestNextRunTime_ExactlyAtRunAt(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)
	next := nextRunTime(now, timeOfDay{hour: 0, minute: 30})

	want := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("期望 %v，实际=%v", want, next)
	}
}

package domain

import "testing"

func TestRoom_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		room      Room
		wantTitle string
		wantCount int
		wantState RoomStatus
	}{
		{"missing title", Room{ID: 7}, "채팅방 #7", 0, RoomActive},
		{"blank title", Room{ID: 3, Title: "   "}, "채팅방 #3", 0, RoomActive},
		{"kept title", Room{ID: 1, Title: "101동 대표회의"}, "101동 대표회의", 0, RoomActive},
		{"negative count", Room{ID: 2, Title: "x", ParticipantCount: -4}, "x", 0, RoomActive},
		{"kept status", Room{ID: 5, Title: "x", Status: RoomInactive}, "x", 0, RoomInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.room.Normalize()
			if tt.room.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tt.room.Title, tt.wantTitle)
			}
			if tt.room.ParticipantCount != tt.wantCount {
				t.Errorf("ParticipantCount = %d, want %d", tt.room.ParticipantCount, tt.wantCount)
			}
			if tt.room.Status != tt.wantState {
				t.Errorf("Status = %q, want %q", tt.room.Status, tt.wantState)
			}
		})
	}
}

func TestRoom_Apply(t *testing.T) {
	title := "새 제목"
	count := 3
	unread := true
	closed := RoomInactive

	room := Room{ID: 5, Title: "old", ParticipantCount: 2}
	room.Apply(RoomPatch{ID: 5, Title: &title, ParticipantCount: &count, HasUnread: &unread, Status: &closed})

	if room.Title != title {
		t.Errorf("Title = %q, want %q", room.Title, title)
	}
	if room.ParticipantCount != 3 {
		t.Errorf("ParticipantCount = %d, want 3", room.ParticipantCount)
	}
	if !room.HasUnread {
		t.Error("HasUnread = false, want true")
	}
	if !room.Closed() {
		t.Error("Closed() = false, want true")
	}
}

func TestRoom_Apply_PartialKeepsFields(t *testing.T) {
	count := 9
	room := Room{ID: 5, Title: "kept", ParticipantCount: 2, Status: RoomActive}
	room.Apply(RoomPatch{ID: 5, ParticipantCount: &count})

	if room.Title != "kept" {
		t.Errorf("Title = %q, want kept", room.Title)
	}
	if room.ParticipantCount != 9 {
		t.Errorf("ParticipantCount = %d, want 9", room.ParticipantCount)
	}
	if room.Status != RoomActive {
		t.Errorf("Status = %q, want ACTIVE", room.Status)
	}
}

package quiz

import "testing"

func TestCategoriesForGender(t *testing.T) {
	male := CategoriesForGender(GenderMale)
	female := CategoriesForGender(GenderFemale)
	if len(male) != 8 || len(female) != 8 {
		t.Fatalf("got %d male / %d female categories, want 8/8", len(male), len(female))
	}
	for _, c := range male {
		if c.Gender != GenderMale {
			t.Fatalf("category %s leaked into male list", c.ID)
		}
	}
}

func TestQuestionsForCancerShape(t *testing.T) {
	cases := []struct {
		cancerID   string
		wantDetail string // first follow-up question of the organ deep dive
	}{
		{"paru_pria", "paru_detail_1"},
		{"paru_wanita", "paru_detail_1"},
		{"payudara_wanita", "payudara_detail_1"},
		{"kolorektal_pria", "kolo_detail_1"},
		{"prostat_pria", "gen_detail_1"},
		{"tiroid_wanita", "gen_detail_1"},
	}
	for _, c := range cases {
		qs := QuestionsForCancer(c.cancerID)
		if len(qs) != 5 {
			t.Fatalf("%s: got %d questions, want 5", c.cancerID, len(qs))
		}
		specific := qs[3]
		if specific.ID != "99" || specific.FollowUp == nil {
			t.Fatalf("%s: expected deep-dive with follow-up at position 3, got %+v", c.cancerID, specific)
		}
		if specific.FollowUp.Questions[0].ID != c.wantDetail {
			t.Fatalf("%s: deep-dive follow-up = %s, want %s",
				c.cancerID, specific.FollowUp.Questions[0].ID, c.wantDetail)
		}
		last := qs[len(qs)-1]
		if last.Type != TypeText {
			t.Fatalf("%s: final question should be free text, got %s", c.cancerID, last.Type)
		}
	}
}

func TestCategoryByID(t *testing.T) {
	if c := CategoryByID("payudara_wanita"); c == nil || c.Label != "Kanker Payudara" {
		t.Fatalf("unexpected category: %+v", c)
	}
	if c := CategoryByID("nope"); c != nil {
		t.Fatalf("expected nil for unknown id, got %+v", c)
	}
}

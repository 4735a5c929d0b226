package quiz

import "strings"

// Gender selects which screening categories are offered.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Category struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Gender Gender `json:"gender"`
}

var CancerTypes = []Category{
	// Laki-laki
	{ID: "paru_pria", Label: "Kanker Paru", Gender: GenderMale},
	{ID: "kolorektal_pria", Label: "Kanker Kolorektal (Usus Besar)", Gender: GenderMale},
	{ID: "hati_pria", Label: "Kanker Hati", Gender: GenderMale},
	{ID: "nasofaring_pria", Label: "Kanker Nasofaring", Gender: GenderMale},
	{ID: "prostat_pria", Label: "Kanker Prostat", Gender: GenderMale},
	{ID: "limfoma_pria", Label: "Limfoma Non-Hodgkin", Gender: GenderMale},
	{ID: "leukemia_pria", Label: "Leukemia", Gender: GenderMale},
	{ID: "kandung_kemih_pria", Label: "Kanker Kandung Kemih", Gender: GenderMale},

	// Perempuan
	{ID: "payudara_wanita", Label: "Kanker Payudara", Gender: GenderFemale},
	{ID: "leher_rahim_wanita", Label: "Kanker Leher Rahim (Serviks)", Gender: GenderFemale},
	{ID: "ovarium_wanita", Label: "Kanker Ovarium", Gender: GenderFemale},
	{ID: "kolorektal_wanita", Label: "Kanker Kolorektal (Usus Besar)", Gender: GenderFemale},
	{ID: "tiroid_wanita", Label: "Kanker Tiroid", Gender: GenderFemale},
	{ID: "paru_wanita", Label: "Kanker Paru", Gender: GenderFemale},
	{ID: "korpus_uteri_wanita", Label: "Kanker Korpus Uteri", Gender: GenderFemale},
	{ID: "hati_wanita", Label: "Kanker Hati", Gender: GenderFemale},
}

var InfoSources = []string{
	"Instagram",
	"Facebook",
	"TikTok",
	"Teman / Keluarga",
	"Google Search",
	"Event Kesehatan",
	"Lainnya",
}

const DisclaimerText = "Hasil ini dihasilkan oleh AI sebagai screening awal dan BUKAN merupakan diagnosis medis. Selalu konsultasikan kondisi kesehatan Anda dengan dokter."

// CategoryByID returns the category for id, or nil when unknown.
func CategoryByID(id string) *Category {
	for i := range CancerTypes {
		if CancerTypes[i].ID == id {
			return &CancerTypes[i]
		}
	}
	return nil
}

// CategoriesForGender lists the categories offered to a gender.
func CategoriesForGender(g Gender) []Category {
	var out []Category
	for _, c := range CancerTypes {
		if c.Gender == g {
			out = append(out, c)
		}
	}
	return out
}

var smokingFollowUp = []Question{
	{
		ID:   "smk_1",
		Text: "Berapa batang rokok yang Anda hisap rata-rata per hari?",
		Type: TypeSingle,
		Options: []Option{
			{ID: "s_light", Label: "Kurang dari 10 batang", Value: "<10 batang"},
			{ID: "s_mod", Label: "10 - 20 batang (1 bungkus)", Value: "10-20 batang"},
			{ID: "s_heavy", Label: "Lebih dari 20 batang", Value: ">20 batang"},
		},
	},
	{
		ID:   "smk_2",
		Text: "Sudah berapa tahun Anda merokok?",
		Type: TypeSingle,
		Options: []Option{
			{ID: "y_short", Label: "Kurang dari 5 tahun", Value: "<5 tahun"},
			{ID: "y_med", Label: "5 - 10 tahun", Value: "5-10 tahun"},
			{ID: "y_long", Label: "Lebih dari 10 tahun", Value: ">10 tahun"},
		},
	},
}

var familyFollowUp = []Question{
	{
		ID:   "fam_1",
		Text: "Siapa anggota keluarga yang memiliki riwayat kanker?",
		Type: TypeMulti,
		Options: []Option{
			{ID: "rel_1", Label: "Orang Tua (Ayah/Ibu)", Value: "Orang Tua"},
			{ID: "rel_2", Label: "Saudara Kandung", Value: "Saudara Kandung"},
			{ID: "rel_3", Label: "Kakek/Nenek", Value: "Kakek/Nenek"},
			{ID: "rel_4", Label: "Keluarga Jauh", Value: "Keluarga Jauh"},
		},
	},
	{
		ID:          "fam_2",
		Text:        "Jenis kanker apa yang diderita anggota keluarga tersebut?",
		Type:        TypeText,
		Placeholder: "Contoh: Kanker Payudara, Kanker Paru, dll...",
	},
}

var baseQuestions = []Question{
	{
		ID:   "1",
		Text: "Berapa usia Anda saat ini?",
		Type: TypeSingle,
		Options: []Option{
			{ID: "u1", Label: "Di bawah 20 tahun", Value: "<20"},
			{ID: "u2", Label: "20 - 39 tahun", Value: "20-39"},
			{ID: "u3", Label: "40 - 59 tahun", Value: "40-59"},
			{ID: "u4", Label: "60 tahun ke atas", Value: ">=60"},
		},
	},
	{
		ID:   "2",
		Text: "Bagaimana status merokok Anda?",
		Type: TypeSingle,
		Options: []Option{
			{ID: "s1", Label: "Tidak pernah merokok", Value: "Tidak pernah"},
			{ID: "s2", Label: "Perokok aktif", Value: "Perokok aktif"},
			{ID: "s3", Label: "Perokok pasif (sering terpapar)", Value: "Perokok pasif"},
			{ID: "s4", Label: "Mantan perokok (sudah berhenti)", Value: "Mantan perokok"},
		},
		FollowUp: &FollowUp{
			TriggerValues: []string{"Perokok aktif"},
			Questions:     smokingFollowUp,
		},
	},
	{
		ID:   "3",
		Text: "Apakah ada riwayat kanker dalam keluarga inti?",
		Type: TypeSingle,
		Options: []Option{
			{ID: "f1", Label: "Tidak ada", Value: "Tidak"},
			{ID: "f2", Label: "Ya, ada", Value: "Ya"},
			{ID: "f3", Label: "Tidak tahu", Value: "Tidak tahu"},
		},
		FollowUp: &FollowUp{
			TriggerValues: []string{"Ya", "Ya, ada"},
			Questions:     familyFollowUp,
		},
	},
}

// QuestionsForCancer assembles the authored question path for a
// category: the shared base questions, one organ-specific deep dive,
// and a closing free-text question.
func QuestionsForCancer(cancerID string) []Question {
	var specific Question

	switch {
	case strings.Contains(cancerID, "paru"):
		specific = Question{
			ID:   "99",
			Text: "Apakah Anda mengalami gejala pernapasan berikut?",
			Type: TypeSingle,
			Options: []Option{
				{ID: "p1", Label: "Tidak ada keluhan napas", Value: "Tidak"},
				{ID: "p2", Label: "Batuk lama (>2 minggu) tidak sembuh", Value: "Batuk kronis"},
				{ID: "p3", Label: "Napas pendek / sesak saat aktivitas ringan", Value: "Sesak napas"},
			},
			FollowUp: &FollowUp{
				TriggerValues: []string{"Batuk kronis", "Sesak napas"},
				Questions: []Question{
					{
						ID:   "paru_detail_1",
						Text: "Apakah batuk disertai darah atau lendir berwarna karat?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "pd1", Label: "Tidak", Value: "Tidak"},
							{ID: "pd2", Label: "Ya, kadang berdarah", Value: "Ya"},
						},
					},
					{
						ID:   "paru_detail_2",
						Text: "Apakah dada terasa nyeri (tajam/tumpul) yang memburuk saat menarik napas dalam?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "pd3", Label: "Tidak", Value: "Tidak"},
							{ID: "pd4", Label: "Ya, terasa nyeri", Value: "Ya"},
						},
					},
				},
			},
		}
	case strings.Contains(cancerID, "payudara"):
		specific = Question{
			ID:   "99",
			Text: "Lakukan perabaan (SADARI). Apakah Anda merasakan kelainan?",
			Type: TypeSingle,
			Options: []Option{
				{ID: "b1", Label: "Tidak ada kelainan", Value: "Normal"},
				{ID: "b2", Label: "Teraba benjolan keras", Value: "Benjolan"},
				{ID: "b3", Label: "Perubahan kulit (kerut/kemerahan) atau puting", Value: "Perubahan fisik"},
			},
			FollowUp: &FollowUp{
				TriggerValues: []string{"Benjolan", "Perubahan fisik"},
				Questions: []Question{
					{
						ID:   "payudara_detail_1",
						Text: "Apakah benjolan tersebut terasa nyeri saat ditekan?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "bd1", Label: "Tidak nyeri", Value: "Tidak nyeri"},
							{ID: "bd2", Label: "Ya, nyeri", Value: "Nyeri"},
						},
					},
					{
						ID:   "payudara_detail_2",
						Text: "Apakah benjolan tersebut bisa digerakkan atau terasa kaku/menempel?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "bd3", Label: "Bisa digerakkan (Mobile)", Value: "Mobile"},
							{ID: "bd4", Label: "Kaku / Menempel di dalam (Fixed)", Value: "Fixed"},
						},
					},
				},
			},
		}
	case strings.Contains(cancerID, "kolorektal"):
		specific = Question{
			ID:   "99",
			Text: "Bagaimana pola Buang Air Besar (BAB) Anda akhir-akhir ini?",
			Type: TypeSingle,
			Options: []Option{
				{ID: "c1", Label: "Normal dan teratur", Value: "Normal"},
				{ID: "c2", Label: "Berubah-ubah (Sembelit lalu Diare)", Value: "Berubah pola"},
				{ID: "c3", Label: "BAB disertai darah", Value: "BAB Berdarah"},
			},
			FollowUp: &FollowUp{
				TriggerValues: []string{"Berubah pola", "BAB Berdarah"},
				Questions: []Question{
					{
						ID:   "kolo_detail_1",
						Text: "Apa warna darah pada feses?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "kd1", Label: "Merah segar menetes", Value: "Merah segar"},
							{ID: "kd2", Label: "Merah gelap bercampur feses", Value: "Merah gelap"},
							{ID: "kd3", Label: "Hitam pekat (seperti aspal)", Value: "Hitam/Melena"},
							{ID: "kd4", Label: "Tidak yakin/Tidak melihat", Value: "Tidak yakin"},
						},
					},
					{
						ID:   "kolo_detail_2",
						Text: "Apakah perut sering terasa kembung, penuh, atau nyeri kram?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "kd5", Label: "Jarang", Value: "Jarang"},
							{ID: "kd6", Label: "Sering/Terus menerus", Value: "Sering"},
						},
					},
				},
			},
		}
	default:
		specific = Question{
			ID:   "99",
			Text: "Apakah ada keluhan fisik lain yang mencurigakan di tubuh Anda?",
			Type: TypeSingle,
			Options: []Option{
				{ID: "g1", Label: "Saya merasa sehat", Value: "Sehat"},
				{ID: "g2", Label: "Ada keluhan ringan (hilang timbul)", Value: "Ringan"},
				{ID: "g3", Label: "Ada keluhan berat yang menetap", Value: "Berat"},
			},
			FollowUp: &FollowUp{
				TriggerValues: []string{"Berat"},
				Questions: []Question{
					{
						ID:   "gen_detail_1",
						Text: "Apakah Anda mengalami penurunan berat badan drastis tanpa diet?",
						Type: TypeSingle,
						Options: []Option{
							{ID: "gd1", Label: "Tidak", Value: "Tidak"},
							{ID: "gd2", Label: "Ya, >5kg dalam 3 bulan", Value: "Ya"},
						},
					},
				},
			},
		}
	}

	finalOpen := Question{
		ID:          "100",
		Text:        "Ceritakan keluhan lain yang belum tercakup di atas secara detail:",
		Type:        TypeText,
		Placeholder: "Contoh: Demam naik turun setiap malam, keringat dingin, dll...",
	}

	out := make([]Question, 0, len(baseQuestions)+2)
	out = append(out, baseQuestions...)
	out = append(out, specific, finalOpen)
	return out
}

package fixture

import "strings"

type Job struct {
	Slug           string
	Title          string
	Company        string
	Location       string
	Description    []string
	Qualifications []string
	Benefits       []string
}

func DefaultJobs() []Job {
	return []Job{
		{
			Slug:     "software-developer-nusantara-tech",
			Title:    "Software Developer",
			Company:  "Nusantara Tech",
			Location: "Jakarta Selatan",
			Description: []string{
				"Membangun dan memelihara layanan backend.",
				"Bekerja sama dengan tim produk dan desain.",
			},
			Qualifications: []string{"Pengalaman 2 tahun dengan Go atau Java", "Memahami SQL"},
			Benefits:       []string{"BPJS Kesehatan", "Hybrid working"},
		},
		{
			Slug:           "senior-software-developer-kopi-kita",
			Title:          "Senior Software Developer",
			Company:        "Kopi Kita",
			Location:       "Bandung",
			Description:    []string{"Memimpin pengembangan aplikasi pemesanan."},
			Qualifications: []string{"Pengalaman 5 tahun", "Mentoring engineer junior"},
			Benefits:       []string{"Asuransi keluarga", "Stock option"},
		},
		{
			Slug:           "software-developer-intern-ruang-data",
			Title:          "Software Developer Intern",
			Company:        "Ruang Data",
			Location:       "Remote",
			Description:    []string{"Magang 6 bulan di tim platform data."},
			Qualifications: []string{"Mahasiswa tingkat akhir"},
			Benefits:       []string{"Uang saku", "Sertifikat"},
		},
		{
			Slug:           "backend-engineer-pasar-online",
			Title:          "Backend Engineer",
			Company:        "Pasar Online",
			Location:       "Surabaya",
			Description:    []string{"Mengembangkan API katalog produk."},
			Qualifications: []string{"Go", "PostgreSQL"},
			Benefits:       []string{"Laptop kerja"},
		},
		{
			Slug:           "data-analyst-bank-maju",
			Title:          "Data Analyst",
			Company:        "Bank Maju",
			Location:       "Jakarta Pusat",
			Description:    []string{"Menyusun laporan dan dashboard bisnis."},
			Qualifications: []string{"SQL", "Python"},
			Benefits:       []string{"Bonus tahunan"},
		},
	}
}

// matches reports whether every word of keyword appears in the job title,
// ignoring case.
func (j Job) matches(keyword string) bool {
	title := strings.ToLower(j.Title)
	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(title, w) {
			return false
		}
	}
	return true
}

package curriculum

func lgsSubjects() []Subject {
	return []Subject{
		{
			Name: Turkish, Key: "turkce", MaxQuestions: CoreQuestions, Weight: 5,
			Topics: []string{
				"Okuma-Anlama",
				"Sözcük-Anlam İlişkisi",
				"Cümle-Anlam İlişkisi",
				"Paragraf-Anlam İlişkisi",
				"Yazım Kuralları",
				"Noktalama İşaretleri",
				"Dil Bilgisi",
				"Söz Sanatları",
				"Anlatım Biçimleri",
				"Metin Türleri",
			},
		},
		{
			Name: Math, Key: "matematik", MaxQuestions: CoreQuestions, Weight: 5,
			Topics: []string{
				"Çarpanlar ve Katlar",
				"Üslü İfadeler",
				"Kareköklü İfadeler",
				"Veri Analizi",
				"Merkezi Eğilim ve Yayılım Ölçüleri",
				"Olasılık",
				"Cebirsel İfadeler ve Özdeşlikler",
				"Doğrusal Denklemler",
				"Eşitsizlikler",
				"Üçgenler",
				"Dönüşüm Geometrisi",
				"Eşlik ve Benzerlik",
				"Geometrik Cisimler",
			},
		},
		{
			Name: Science, Key: "fen", MaxQuestions: CoreQuestions, Weight: 5,
			Topics: []string{
				"Mevsimler ve İklim",
				"DNA ve Genetik Kod",
				"Kalıtım",
				"Bağışıklık Sistemi",
				"Basınç",
				"Basit Makineler",
				"Enerji Dönüşümleri",
				"İş-Güç-Enerji",
				"Kimyasal Tepkimeler",
				"Asitler-Bazlar-Tuzlar",
				"Madde ve Endüstri",
				"Elektrik Yükleri",
				"Aydınlanma ve Ses",
				"Yenilenebilir Enerji",
			},
		},
		{
			Name: Social, Key: "sosyal", MaxQuestions: MinorQuestions, Weight: 5,
			Topics: []string{
				"İletişim ve İnsan İlişkileri",
				"Bilim ve Teknoloji",
				"Ekonomi ve Sosyal Hayat",
				"Küresel Bağlantılar",
				"Ülkeler Arası Köprüler",
				"Yaşayan Demokrasi",
				"Üretim-Dağıtım-Tüketim",
				"Harita Bilgisi",
				"Coğrafi Konum",
				"İklim ve Yerşekilleri",
			},
		},
		{
			Name: Religion, Key: "din", MaxQuestions: MinorQuestions, Weight: 5,
			Topics: []string{
				"Kader ve Kaza",
				"Hz. Muhammed'in Hayatı",
				"Peygamberimizin Örnekliği",
				"Kur'an-ı Kerim",
				"İslam ve İbadet",
				"Namaz",
				"Oruç",
				"Zekat ve Sadaka",
				"Ahlak ve Güzel Davranışlar",
				"Dinler ve Evrensel Değerler",
			},
		},
		{
			Name: English, Key: "ingilizce", MaxQuestions: MinorQuestions, Weight: 5,
			Topics: []string{
				"Friendship",
				"Teen Life",
				"In the Kitchen",
				"On the Phone",
				"The Internet",
				"Adventures",
				"Tourism",
				"Chores",
				"Science",
				"Saving the Planet",
			},
		},
	}
}

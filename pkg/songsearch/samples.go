package songsearch

func year(y int) *int { return &y }

// SampleSongs is the demo catalog loaded by the seed command and the
// server's --seed flag. Re-seeding is a no-op for records already present.
func SampleSongs() []Song {
	return []Song{
		{
			Artist:      "Queen",
			Title:       "Bohemian Rhapsody",
			Album:       "A Night at the Opera",
			Year:        year(1975),
			Description: "A six-minute rock opera moving from ballad to operatic interlude to hard rock.",
		},
		{
			Artist:      "The Beatles",
			Title:       "Yesterday",
			Album:       "Help!",
			Year:        year(1965),
			Description: "A melancholic acoustic ballad with a string quartet about lost love.",
		},
		{
			Artist:      "Nirvana",
			Title:       "Smells Like Teen Spirit",
			Album:       "Nevermind",
			Year:        year(1991),
			Description: "Loud-quiet-loud grunge anthem with distorted guitars and angsty vocals.",
		},
		{
			Artist:      "Miles Davis",
			Title:       "So What",
			Album:       "Kind of Blue",
			Year:        year(1959),
			Description: "Cool modal jazz built on a call and response between bass and horns.",
		},
		{
			Artist:      "Daft Punk",
			Title:       "One More Time",
			Album:       "Discovery",
			Year:        year(2000),
			Description: "Filtered French house with auto-tuned vocals made for the dance floor.",
		},
		{
			Artist:      "Adele",
			Title:       "Someone Like You",
			Album:       "21",
			Year:        year(2011),
			Description: "A piano-led heartbreak ballad about moving on after a relationship ends.",
		},
		{
			Artist:      "Bob Marley & The Wailers",
			Title:       "Redemption Song",
			Album:       "Uprising",
			Year:        year(1980),
			Description: "A solo acoustic song of freedom and emancipation.",
		},
		{
			Artist:      "Metallica",
			Title:       "Master of Puppets",
			Album:       "Master of Puppets",
			Year:        year(1986),
			Description: "Fast thrash metal epic with intricate riffs about addiction and control.",
		},
		{
			Artist:      "Johann Sebastian Bach",
			Title:       "Cello Suite No. 1 in G major",
			Album:       "",
			Year:        nil,
			Description: "Solo baroque cello prelude with flowing arpeggios.",
		},
		{
			Artist:      "Rosalía",
			Title:       "Malamente",
			Album:       "El Mal Querer",
			Year:        year(2018),
			Description: "Flamenco rhythms and handclaps fused with modern pop production.",
		},
	}
}

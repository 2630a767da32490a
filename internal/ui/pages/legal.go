package pages

func lastUpdated(date string) string {
	return "Ultima actualizare: " + date
}

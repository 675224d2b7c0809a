package tagwriter

import (
	"strconv"

	mp4tag "github.com/Sorrow446/go-mp4tag"
)

func (w *WriterImpl) writeM4A(req *WriteRequest) error {
	mp4, err := mp4tag.Open(req.FilePath)
	if err != nil {
		return err
	}

	defer mp4.Close()

	meta := req.Metadata

	tags := &mp4tag.MP4Tags{
		Title:  meta.Title,
		Artist: meta.Artist,
		Album:  meta.Album,
	}

	if len(meta.Genres) > 0 {
		tags.Genre = meta.Genres[0]
	}

	if meta.Year > 0 {
		tags.Year = strconv.Itoa(meta.Year)
	}

	if req.Lyrics != "" {
		tags.Lyrics = req.Lyrics
	}

	if req.Art != nil {
		tags.Cover = req.Art.Bytes
	}

	return mp4.Write(tags, nil)
}

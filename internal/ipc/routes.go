package ipc

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.statusHandler)
	s.echo.POST("/stop", s.stopHandler)
	s.echo.POST("/next", s.nextHandler)
	s.echo.POST("/load", s.loadHandler)
	s.echo.POST("/rescan", s.rescanHandler)
	s.echo.POST("/weather", s.weatherHandler)
	s.echo.GET("/frame", s.frameHandler)
	s.echo.GET("/stream", s.streamHandler)
}
